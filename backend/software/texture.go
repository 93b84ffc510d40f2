package software

import (
	"github.com/gogpu/bloom/internal/image"
	"github.com/gogpu/gputypes"
)

// Texture is a CPU texture owned by a Device.
type Texture struct {
	buf      *image.Buf
	label    string
	filter   gputypes.FilterMode
	address  gputypes.AddressMode
	owner    *Device
	released bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.buf.Width() }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.buf.Height() }

// Format returns the storage format.
func (t *Texture) Format() gputypes.TextureFormat { return t.buf.Format() }

// Label returns the debug name.
func (t *Texture) Label() string { return t.label }

// FilterMode returns the sampler filter the texture was allocated with.
func (t *Texture) FilterMode() gputypes.FilterMode { return t.filter }

// AddressMode returns the sampler address mode the texture was allocated with.
func (t *Texture) AddressMode() gputypes.AddressMode { return t.address }

// At returns the linear RGBA value of a pixel.
func (t *Texture) At(x, y int) (r, g, b, a float32) { return t.buf.At(x, y) }
