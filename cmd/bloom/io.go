package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-openexr/exr"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	bloomcolor "github.com/gogpu/bloom/internal/color"
)

// linearImage is straight-alpha linear RGBA, four floats per pixel.
type linearImage struct {
	width, height int
	pix           []float32
}

func (img *linearImage) expose(scale float32) {
	for i := 0; i < len(img.pix); i += 4 {
		img.pix[i] *= scale
		img.pix[i+1] *= scale
		img.pix[i+2] *= scale
	}
}

func isEXR(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".exr")
}

// loadImage decodes path into linear light. A positive width resizes the
// image with Catmull-Rom, keeping the aspect ratio.
func loadImage(path string, width int) (*linearImage, error) {
	if isEXR(path) {
		if width > 0 {
			return nil, fmt.Errorf("%s: -width is not supported for EXR input", path)
		}
		return loadEXR(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := src.Bounds()
	dstRect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	if width > 0 && width != bounds.Dx() {
		h := max(1, bounds.Dy()*width/bounds.Dx())
		dstRect = image.Rect(0, 0, width, h)
	}
	nrgba := image.NewNRGBA64(dstRect)
	if dstRect.Size() == bounds.Size() {
		draw.Draw(nrgba, dstRect, src, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(nrgba, dstRect, src, bounds, draw.Src, nil)
	}

	w, h := dstRect.Dx(), dstRect.Dy()
	img := &linearImage{width: w, height: h, pix: make([]float32, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := nrgba.NRGBA64At(x, y)
			i := (y*w + x) * 4
			img.pix[i] = bloomcolor.GammaToLinear(float32(c.R) / 0xffff)
			img.pix[i+1] = bloomcolor.GammaToLinear(float32(c.G) / 0xffff)
			img.pix[i+2] = bloomcolor.GammaToLinear(float32(c.B) / 0xffff)
			img.pix[i+3] = float32(c.A) / 0xffff
		}
	}
	return img, nil
}

func loadEXR(path string) (*linearImage, error) {
	src, err := exr.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	img := &linearImage{width: w, height: h, pix: make([]float32, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := src.RGBA(x+src.Rect.Min.X, y+src.Rect.Min.Y)
			i := (y*w + x) * 4
			img.pix[i], img.pix[i+1], img.pix[i+2], img.pix[i+3] = r, g, b, a
		}
	}
	return img, nil
}

// saveImage writes img as EXR, keeping the full range, or as PNG.
func saveImage(path string, img *linearImage) error {
	if isEXR(path) {
		out := exr.NewRGBAImage(image.Rect(0, 0, img.width, img.height))
		copy(out.Pix, img.pix)
		if err := exr.EncodeFile(path, out); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return nil
	}

	out := image.NewNRGBA(image.Rect(0, 0, img.width, img.height))
	for y := 0; y < img.height; y++ {
		for x := 0; x < img.width; x++ {
			i := (y*img.width + x) * 4
			out.SetNRGBA(x, y, color.NRGBA{
				R: bloomcolor.EncodeSRGB8(img.pix[i]),
				G: bloomcolor.EncodeSRGB8(img.pix[i+1]),
				B: bloomcolor.EncodeSRGB8(img.pix[i+2]),
				A: bloomcolor.EncodeUnorm8(img.pix[i+3]),
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
