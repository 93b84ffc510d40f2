//go:build !nogpu

package wgpu

import (
	"time"

	"github.com/gogpu/bloom"
	"github.com/gogpu/gputypes"
)

const defaultTimeout = 5 * time.Second

// Option configures a Device.
type Option func(*options)

type options struct {
	backends      []gputypes.Backend
	allowSoftware bool
	timeout       time.Duration
	colorSpace    bloom.ColorSpace
}

func defaultOptions() options {
	return options{
		backends: []gputypes.Backend{
			gputypes.BackendVulkan,
			gputypes.BackendMetal,
			gputypes.BackendDX12,
			gputypes.BackendGL,
		},
		timeout:    defaultTimeout,
		colorSpace: bloom.ColorSpaceLinear,
	}
}

// WithBackends sets the HAL backends Open tries, in order.
func WithBackends(backends ...gputypes.Backend) Option {
	return func(o *options) {
		if len(backends) > 0 {
			o.backends = backends
		}
	}
}

// WithSoftwareAdapter lets Open fall back to a CPU adapter. Off by default.
func WithSoftwareAdapter(allow bool) Option {
	return func(o *options) {
		o.allowSoftware = allow
	}
}

// WithTimeout bounds how long Flush waits for the GPU.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithColorSpace sets the working color space reported to SelectFormat.
func WithColorSpace(cs bloom.ColorSpace) Option {
	return func(o *options) {
		o.colorSpace = cs
	}
}
