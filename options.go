package bloom

import "github.com/gogpu/gputypes"

// PassOption configures a Pass during creation.
//
// Example:
//
//	// Probe the device for the HDR format
//	pass, err := bloom.NewPass(dev, probe)
//
//	// Force a format and a name for log output
//	pass, err := bloom.NewPass(dev, nil,
//	    bloom.WithFormat(gputypes.TextureFormatRGBA16Float),
//	    bloom.WithName("camera0"))
type PassOption func(*passOptions)

type passOptions struct {
	format        gputypes.TextureFormat
	name          string
	skipOnFailure bool
}

func defaultPassOptions() passOptions {
	return passOptions{
		format:        gputypes.TextureFormatUndefined, // probed in NewPass
		name:          "bloom",
		skipOnFailure: true,
	}
}

// WithFormat sets the pyramid format and skips the capability probe.
func WithFormat(f gputypes.TextureFormat) PassOption {
	return func(o *passOptions) {
		o.format = f
	}
}

// WithName sets the name reported in log records.
func WithName(name string) PassOption {
	return func(o *passOptions) {
		o.name = name
	}
}

// WithSkipOnFailure controls how Render reports an allocation failure.
// When enabled (the default) the error wraps ErrSkipped so the host can
// present the frame without bloom. When disabled the allocation error is
// returned as is.
func WithSkipOnFailure(skip bool) PassOption {
	return func(o *passOptions) {
		o.skipOnFailure = skip
	}
}
