package bloom

import "github.com/gogpu/gputypes"

// Texture is a device image handle.
type Texture interface {
	Width() int
	Height() int
	Format() gputypes.TextureFormat
	Label() string
}

// TextureDesc describes a texture to allocate.
// Pyramid levels always request linear filtering and clamp-to-edge addressing.
type TextureDesc struct {
	Width       int
	Height      int
	Format      gputypes.TextureFormat
	Filter      gputypes.FilterMode
	AddressMode gputypes.AddressMode
	Label       string
}

// Allocator creates and frees textures.
type Allocator interface {
	Allocate(desc TextureDesc) (Texture, error)
	Release(tex Texture)
}

// PassIndex selects the bloom material pass a blit runs with.
type PassIndex int

// Bloom material passes.
const (
	// PassPrefilter thresholds the source into down[0].
	PassPrefilter PassIndex = iota
	// PassDownsample filters one level into the next smaller one.
	PassDownsample
	// PassUpsample blends a coarse level over a fine one.
	PassUpsample
	// PassCopy seeds the top of the up chain.
	PassCopy
)

// String returns the pass name.
func (p PassIndex) String() string {
	switch p {
	case PassPrefilter:
		return "Prefilter"
	case PassDownsample:
		return "Downsample"
	case PassUpsample:
		return "Upsample"
	case PassCopy:
		return "Copy"
	default:
		return "Unknown"
	}
}

// Recorder records bloom commands. Commands execute in the order they are
// recorded; a blit may read only textures written by earlier commands.
type Recorder interface {
	// SetParams binds the uniforms for the following blits.
	SetParams(params ShaderParams)

	// Blit renders src into dst with the given pass.
	Blit(src, dst Texture, pass PassIndex) error

	// BlitCombine renders the blend of the coarser low and the finer high
	// into dst.
	BlitCombine(low, high, dst Texture, pass PassIndex) error

	// Composite adds bloom * intensity * tint onto frame.
	Composite(frame, bloom Texture, intensity float32, tint [3]float32) error
}

// Device is the full host surface a Pass needs.
type Device interface {
	Allocator
	Recorder
}

// FormatUsage is a set of capabilities a texture format must support.
type FormatUsage uint8

// Format usage flags.
const (
	// UsageSample means the format can be sampled.
	UsageSample FormatUsage = 1 << iota
	// UsageLinear means the format can be sampled with linear filtering.
	UsageLinear
	// UsageRender means the format can be a render target.
	UsageRender
	// UsageBlend means the format supports blending as a render target.
	UsageBlend
)

// Has reports whether all flags in other are set.
func (u FormatUsage) Has(other FormatUsage) bool {
	return u&other == other
}

// ColorSpace is the project-wide working color space.
type ColorSpace uint8

// Color spaces.
const (
	ColorSpaceGamma ColorSpace = iota
	ColorSpaceLinear
)

// String returns the color space name.
func (c ColorSpace) String() string {
	if c == ColorSpaceLinear {
		return "Linear"
	}
	return "Gamma"
}

// CapabilityProbe answers format support queries for a device.
type CapabilityProbe interface {
	SupportsFormat(format gputypes.TextureFormat, usage FormatUsage) bool
	ColorSpace() ColorSpace
}
