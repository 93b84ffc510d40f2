// Command bloom applies a mip-pyramid bloom to an image.
//
// Usage:
//
//	bloom -in frame.exr -out glow.png -threshold 0.8 -intensity 1.5 -scatter 0.7
//
// LDR inputs are decoded from sRGB to linear light. -exposure scales the
// input by 2^exposure before thresholding, which lets bright LDR regions
// cross a threshold above 1. PNG output is clamped and encoded as sRGB;
// EXR output keeps the full range.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/backend"
	_ "github.com/gogpu/bloom/backend/software"
	_ "github.com/gogpu/bloom/backend/wgpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

type config struct {
	in, out  string
	device   string
	width    int
	exposure float64
	params   bloom.Params
}

func main() {
	defaults := bloom.DefaultParams()
	var (
		in         = flag.String("in", "", "input image (png, jpeg, gif, bmp, tiff, webp or exr)")
		out        = flag.String("out", "bloom.png", "output image (png or exr)")
		threshold  = flag.Float64("threshold", float64(defaults.Threshold), "brightness threshold, gamma space")
		intensity  = flag.Float64("intensity", float64(defaults.Intensity), "bloom strength")
		scatter    = flag.Float64("scatter", float64(defaults.Scatter), "bloom spread in [0, 1]")
		clamp      = flag.Float64("clamp", float64(defaults.Clamp), "maximum source brightness")
		iterations = flag.Int("iterations", defaults.MaxIterations, "maximum pyramid depth")
		hq         = flag.Bool("hq", false, "use the 9-tap tent filter")
		tint       = flag.String("tint", "1,1,1", "bloom tint as r,g,b")
		exposure   = flag.Float64("exposure", 0, "input exposure in stops")
		width      = flag.Int("width", 0, "resize input to this width, 0 keeps the size")
		device     = flag.String("device", "auto", "bloom device: auto, "+strings.Join(backend.Available(), ", "))
		verbose    = flag.Bool("v", false, "log debug output")
	)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		bloom.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	tintRGB, err := parseTint(*tint)
	if err != nil {
		log.Fatalf("bloom: %v", err)
	}

	cfg := config{
		in:       *in,
		out:      *out,
		device:   *device,
		width:    *width,
		exposure: *exposure,
		params: bloom.Params{
			Threshold:            float32(*threshold),
			Intensity:            float32(*intensity),
			Scatter:              float32(*scatter),
			Clamp:                float32(*clamp),
			Tint:                 tintRGB,
			MaxIterations:        *iterations,
			HighQualityFiltering: *hq,
		},
	}
	if err := run(cfg); err != nil {
		log.Fatalf("bloom: %v", err)
	}
}

func run(cfg config) error {
	img, err := loadImage(cfg.in, cfg.width)
	if err != nil {
		return err
	}
	if cfg.exposure != 0 {
		img.expose(float32(math.Exp2(cfg.exposure)))
	}

	dev, err := openDevice(cfg.device)
	if err != nil {
		return err
	}
	defer dev.Close()

	frame, err := dev.NewTexture(img.width, img.height, gputypes.TextureFormatRGBA16Float, "_CameraColor")
	if err != nil {
		return err
	}
	defer dev.Release(frame)
	if err := dev.Upload(frame, img.pix); err != nil {
		return err
	}

	pass, err := bloom.NewPass(dev, dev, bloom.WithName("cli"))
	if err != nil {
		return err
	}
	defer pass.Close()

	layer, err := pass.Render(frame, cfg.params)
	switch {
	case errors.Is(err, bloom.ErrSkipped):
		log.Printf("bloom: %v; writing the input unchanged", err)
	case err != nil:
		return err
	default:
		if err := pass.Composite(frame, layer, cfg.params); err != nil {
			return err
		}
	}

	pix, err := dev.Download(frame)
	if err != nil {
		return err
	}
	img.pix = pix
	if err := saveImage(cfg.out, img); err != nil {
		return err
	}

	log.Printf("bloom: %s -> %s (%dx%d, %d levels, %s, %s)",
		cfg.in, cfg.out, img.width, img.height, pass.Plan().MipCount, pass.Format(), dev.Name())
	return nil
}

// openDevice opens the named device, or the best available one for "auto".
func openDevice(name string) (backend.Device, error) {
	var (
		dev backend.Device
		err error
	)
	if name == "auto" {
		dev, err = backend.Default()
	} else {
		dev, err = backend.Open(name)
	}
	if err != nil {
		return nil, err
	}

	if a, ok := dev.(interface{ AdapterInfo() gpucontext.AdapterInfo }); ok {
		info := a.AdapterInfo()
		bloom.Logger().Info("bloom: using GPU", "adapter", info.Name, "type", info.Type)
	}
	return dev, nil
}

func parseTint(s string) ([3]float32, error) {
	var tint [3]float32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return tint, fmt.Errorf("tint %q: want r,g,b", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return tint, fmt.Errorf("tint %q: %w", s, err)
		}
		tint[i] = float32(v)
	}
	return tint, nil
}
