package software_test

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/backend/software"
	"github.com/gogpu/gputypes"
)

func renderSpot(t *testing.T, dev *software.Device, format gputypes.TextureFormat, params bloom.Params) []float32 {
	t.Helper()

	const size = 128
	frame, err := dev.NewTexture(size, size, gputypes.TextureFormatRGBA32Float, "frame")
	if err != nil {
		t.Fatal(err)
	}
	pix := make([]float32, size*size*4)
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 1
	}
	// A 2x2 bright spot in the middle, so the half-resolution prefilter sees it whole.
	for _, p := range [][2]int{{64, 64}, {65, 64}, {64, 65}, {65, 65}} {
		i := (p[1]*size + p[0]) * 4
		pix[i], pix[i+1], pix[i+2] = 50, 50, 50
	}
	if err := dev.Upload(frame, pix); err != nil {
		t.Fatal(err)
	}

	pass, err := bloom.NewPass(dev, dev, bloom.WithFormat(format))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pass.Close)

	layer, err := pass.Render(frame, params)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := pass.Composite(frame, layer, params); err != nil {
		t.Fatalf("Composite() error = %v", err)
	}
	out, err := dev.Download(frame)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func red(pix []float32, size, x, y int) float32 {
	return pix[(y*size+x)*4]
}

func TestBloomSpreadsBrightPixel(t *testing.T) {
	for _, format := range []gputypes.TextureFormat{
		gputypes.TextureFormatRG11B10Ufloat,
		gputypes.TextureFormatRGBA16Float,
	} {
		t.Run(format.String(), func(t *testing.T) {
			dev := software.NewDevice(software.WithWorkers(4))
			defer dev.Close()

			out := renderSpot(t, dev, format, bloom.DefaultParams())

			near := red(out, 128, 70, 64)
			far := red(out, 128, 90, 64)
			corner := red(out, 128, 0, 0)

			if !(near > 0) {
				t.Errorf("pixel 6px from the spot = %v, want > 0", near)
			}
			if !(far > 0) {
				t.Errorf("pixel 26px from the spot = %v, want > 0", far)
			}
			if !(near > far) {
				t.Errorf("bloom does not fall off: near %v, far %v", near, far)
			}
			if corner > near {
				t.Errorf("corner %v brighter than neighbourhood %v", corner, near)
			}
			if center := red(out, 128, 64, 64); center < 50 {
				t.Errorf("spot center = %v, want >= source 50", center)
			}
		})
	}
}

func TestBloomThresholdRejectsDimFrame(t *testing.T) {
	dev := software.NewDevice(software.WithWorkers(2))
	defer dev.Close()

	const size = 64
	frame, err := dev.NewTexture(size, size, gputypes.TextureFormatRGBA32Float, "frame")
	if err != nil {
		t.Fatal(err)
	}
	pix := make([]float32, size*size*4)
	for i := range pix {
		pix[i] = 0.2
	}
	if err := dev.Upload(frame, pix); err != nil {
		t.Fatal(err)
	}

	pass, err := bloom.NewPass(dev, dev)
	if err != nil {
		t.Fatal(err)
	}
	defer pass.Close()

	layer, err := pass.Render(frame, bloom.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	out, err := dev.Download(layer)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(out); i += 4 {
		if out[i] != 0 || out[i+1] != 0 || out[i+2] != 0 {
			t.Fatalf("bloom layer texel %d = %v, want black", i/4, out[i:i+3])
		}
	}
}

func TestBloomScatterWidensSpread(t *testing.T) {
	dev := software.NewDevice(software.WithWorkers(2))
	defer dev.Close()

	narrow := bloom.DefaultParams()
	narrow.Scatter = 0
	wide := bloom.DefaultParams()
	wide.Scatter = 1

	a := renderSpot(t, dev, gputypes.TextureFormatRGBA16Float, narrow)
	b := renderSpot(t, dev, gputypes.TextureFormatRGBA16Float, wide)

	if fa, fb := red(a, 128, 100, 64), red(b, 128, 100, 64); !(fb > fa) {
		t.Errorf("far glow with scatter 1 = %v, with scatter 0 = %v; want wider spread", fb, fa)
	}
}

func TestBloomSkipsWhenTooLarge(t *testing.T) {
	dev := software.NewDevice(software.WithWorkers(1), software.WithMaxTextureSize(256))
	defer dev.Close()

	pass, err := bloom.NewPass(dev, dev)
	if err != nil {
		t.Fatal(err)
	}
	defer pass.Close()

	small, err := dev.NewTexture(256, 256, gputypes.TextureFormatRGBA16Float, "small")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pass.Render(small, bloom.DefaultParams()); err != nil {
		t.Fatal(err)
	}

	// The software device rejects textures above its limit; a 1024 wide
	// source needs a 512 wide top level.
	big := &fakeSource{w: 1024, h: 256}
	_, err = pass.Render(big, bloom.DefaultParams())
	if !errors.Is(err, bloom.ErrSkipped) {
		t.Fatalf("Render(oversize) error = %v, want ErrSkipped", err)
	}
	if up := pass.Pyramid().Up(0); up == nil || up.Width() != 128 {
		t.Error("pyramid lost its previous level 0")
	}
}

type fakeSource struct{ w, h int }

func (s *fakeSource) Width() int                     { return s.w }
func (s *fakeSource) Height() int                    { return s.h }
func (s *fakeSource) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA16Float }
func (s *fakeSource) Label() string                  { return "oversize" }

func TestBloomLayerIsFinite(t *testing.T) {
	dev := software.NewDevice(software.WithWorkers(2))
	defer dev.Close()

	params := bloom.DefaultParams()
	params.HighQualityFiltering = true
	out := renderSpot(t, dev, gputypes.TextureFormatRG11B10Ufloat, params)
	for i, v := range out {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("output[%d] = %v", i, v)
		}
	}
}
