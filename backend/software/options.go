package software

import "github.com/gogpu/bloom"

// Option configures a Device.
type Option func(*options)

type options struct {
	workers        int
	poolPerBucket  int
	colorSpace     bloom.ColorSpace
	maxTextureSize int
}

func defaultOptions() options {
	return options{
		workers:        0, // GOMAXPROCS
		poolPerBucket:  2,
		colorSpace:     bloom.ColorSpaceLinear,
		maxTextureSize: defaultMaxTextureSize,
	}
}

// WithWorkers sets the number of kernel goroutines.
// Zero or negative uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPool sets how many released textures of each size and format are
// kept for reuse. Zero disables retention limits.
func WithPool(maxPerBucket int) Option {
	return func(o *options) {
		o.poolPerBucket = maxPerBucket
	}
}

// WithColorSpace sets the color space the device reports to the format probe.
func WithColorSpace(cs bloom.ColorSpace) Option {
	return func(o *options) {
		o.colorSpace = cs
	}
}

// WithMaxTextureSize sets the largest texture dimension Allocate accepts.
func WithMaxTextureSize(n int) Option {
	return func(o *options) {
		o.maxTextureSize = n
	}
}
