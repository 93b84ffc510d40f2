//go:build !nogpu

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// textureUsage is requested for every texture so any of them can be a
// pyramid level, a bloom source or a readback target.
const textureUsage = gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst

// Texture is a GPU texture with a default view.
type Texture struct {
	raw     hal.Texture
	view    hal.TextureView
	width   int
	height  int
	format  gputypes.TextureFormat
	label   string
	filter  gputypes.FilterMode
	address gputypes.AddressMode

	// usage is the last usage recorded for barrier computation.
	usage gputypes.TextureUsage

	owner    *Device
	released bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// FilterMode returns the filter requested at allocation.
func (t *Texture) FilterMode() gputypes.FilterMode { return t.filter }

// AddressMode returns the address mode requested at allocation.
func (t *Texture) AddressMode() gputypes.AddressMode { return t.address }

// Raw returns the HAL texture.
func (t *Texture) Raw() hal.Texture { return t.raw }

func (t *Texture) extent() hal.Extent3D {
	return hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1}
}

// transition returns the barrier moving t to usage, or false if t is
// already there.
func (t *Texture) transition(usage gputypes.TextureUsage) (hal.TextureBarrier, bool) {
	if t.usage == usage {
		return hal.TextureBarrier{}, false
	}
	b := hal.TextureBarrier{
		Texture: t.raw,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage: hal.TextureUsageTransition{
			OldUsage: t.usage,
			NewUsage: usage,
		},
	}
	t.usage = usage
	return b, true
}
