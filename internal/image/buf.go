package image

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrUnsupportedFormat is returned when the texture format has no software storage.
	ErrUnsupportedFormat = errors.New("image: unsupported format")
)

// Buf is an encoded image buffer addressed in linear float32 RGBA.
//
// Thread safety: concurrent reads are safe. Concurrent writes are safe only
// when they touch disjoint rows, which is how the bloom kernels split work.
type Buf struct {
	data   []byte
	width  int
	height int
	stride int
	bpp    int
	format gputypes.TextureFormat
}

// NewBuf allocates a zeroed buffer.
func NewBuf(width, height int, format gputypes.TextureFormat) (*Buf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	bpp := BytesPerPixel(format)
	if bpp == 0 {
		return nil, ErrUnsupportedFormat
	}
	return &Buf{
		data:   make([]byte, width*height*bpp),
		width:  width,
		height: height,
		stride: width * bpp,
		bpp:    bpp,
		format: format,
	}, nil
}

// Width returns the buffer width in pixels.
func (b *Buf) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *Buf) Height() int { return b.height }

// Format returns the storage format.
func (b *Buf) Format() gputypes.TextureFormat { return b.format }

// Bounds returns the buffer dimensions.
func (b *Buf) Bounds() (int, int) { return b.width, b.height }

// Data returns the encoded pixel bytes, row-major with no padding.
func (b *Buf) Data() []byte { return b.data }

// Row returns the encoded bytes of row y.
func (b *Buf) Row(y int) []byte {
	return b.data[y*b.stride : (y+1)*b.stride]
}

// SizeBytes returns the storage size of the buffer.
func (b *Buf) SizeBytes() int { return len(b.data) }

// At returns the pixel at (x, y). Coordinates outside the buffer are
// clamped to the nearest edge pixel.
func (b *Buf) At(x, y int) (r, g, bl, a float32) {
	x = clamp(x, 0, b.width-1)
	y = clamp(y, 0, b.height-1)
	off := y*b.stride + x*b.bpp
	return decodePixel(b.format, b.data[off:off+b.bpp])
}

// Set stores the pixel at (x, y). Out-of-bounds writes are ignored.
func (b *Buf) Set(x, y int, r, g, bl, a float32) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	off := y*b.stride + x*b.bpp
	encodePixel(b.format, b.data[off:off+b.bpp], r, g, bl, a)
}

// Clear zeroes every pixel.
func (b *Buf) Clear() {
	clear(b.data)
}

// Fill sets every pixel to the same value.
func (b *Buf) Fill(r, g, bl, a float32) {
	if len(b.data) == 0 {
		return
	}
	encodePixel(b.format, b.data[:b.bpp], r, g, bl, a)
	for off := b.bpp; off < len(b.data); off *= 2 {
		copy(b.data[off:], b.data[:off])
	}
}

// CopyFrom copies src into b. Both buffers must have the same size; the
// pixels are re-encoded when the formats differ.
func (b *Buf) CopyFrom(src *Buf) error {
	if src.width != b.width || src.height != b.height {
		return ErrInvalidDimensions
	}
	if src.format == b.format {
		copy(b.data, src.data)
		return nil
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			r, g, bl, a := src.At(x, y)
			b.Set(x, y, r, g, bl, a)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
