//go:build !nogpu

package wgpu

import (
	"github.com/gogpu/bloom"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// coreFormats lists what every WebGPU device supports without optional
// features. RG11B10Ufloat is renderable only with the
// rg11b10ufloat-renderable feature, and RGBA32Float is not filterable
// without float32-filterable.
var coreFormats = map[gputypes.TextureFormat]bloom.FormatUsage{
	gputypes.TextureFormatRGBA8Unorm:     bloom.UsageSample | bloom.UsageLinear | bloom.UsageRender | bloom.UsageBlend,
	gputypes.TextureFormatRGBA8UnormSrgb: bloom.UsageSample | bloom.UsageLinear | bloom.UsageRender | bloom.UsageBlend,
	gputypes.TextureFormatRGBA16Float:    bloom.UsageSample | bloom.UsageLinear | bloom.UsageRender | bloom.UsageBlend,
	gputypes.TextureFormatRG11B10Ufloat:  bloom.UsageSample | bloom.UsageLinear,
	gputypes.TextureFormatRGBA32Float:    bloom.UsageSample | bloom.UsageRender,
}

// SupportsFormat reports whether the adapter supports format for usage.
func (d *Device) SupportsFormat(format gputypes.TextureFormat, usage bloom.FormatUsage) bool {
	if d.adapter == nil {
		return coreFormats[format].Has(usage)
	}
	return formatUsage(format, d.adapter.TextureFormatCapabilities(format).Flags).Has(usage)
}

// ColorSpace returns the configured working color space.
func (d *Device) ColorSpace() bloom.ColorSpace { return d.opts.colorSpace }

func formatUsage(format gputypes.TextureFormat, flags hal.TextureFormatCapabilityFlags) bloom.FormatUsage {
	var u bloom.FormatUsage
	if flags&hal.TextureFormatCapabilitySampled != 0 {
		u |= bloom.UsageSample
		// The HAL does not report filterability; use the core table for it.
		if coreFormats[format].Has(bloom.UsageLinear) {
			u |= bloom.UsageLinear
		}
	}
	if flags&hal.TextureFormatCapabilityRenderAttachment != 0 {
		u |= bloom.UsageRender
	}
	if flags&hal.TextureFormatCapabilityBlendable != 0 {
		u |= bloom.UsageBlend
	}
	return u
}
