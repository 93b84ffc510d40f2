package bloom

import "github.com/gogpu/gputypes"

// PreferredFormat is the packed float format bloom uses when available.
const PreferredFormat = gputypes.TextureFormatRG11B10Ufloat

// SelectFormat picks the HDR format for a pass.
//
// The packed RG11B10 float format wins when the device can sample it
// linearly and render to it. Otherwise an 8-bit format is used: sRGB in a
// linear color space, UNorm in gamma space. When the fallback is also
// unsupported, or probe is nil, SelectFormat returns ErrUnsupportedFormat.
func SelectFormat(probe CapabilityProbe) (gputypes.TextureFormat, error) {
	if probe == nil {
		return gputypes.TextureFormatUndefined, ErrUnsupportedFormat
	}

	if probe.SupportsFormat(PreferredFormat, UsageLinear|UsageRender) {
		return PreferredFormat, nil
	}

	fallback := gputypes.TextureFormatRGBA8Unorm
	if probe.ColorSpace() == ColorSpaceLinear {
		fallback = gputypes.TextureFormatRGBA8UnormSrgb
	}
	if !probe.SupportsFormat(fallback, UsageRender) {
		return gputypes.TextureFormatUndefined, ErrUnsupportedFormat
	}
	return fallback, nil
}
