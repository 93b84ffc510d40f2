package software

import (
	"fmt"
	"sync"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/backend"
	"github.com/gogpu/bloom/internal/filter"
	"github.com/gogpu/bloom/internal/image"
	"github.com/gogpu/bloom/internal/parallel"
	"github.com/gogpu/gputypes"
)

var defaultMaxTextureSize = int(gputypes.DefaultLimits().MaxTextureDimension2D)

func init() {
	backend.Register(backend.NameSoftware, func() (backend.Device, error) {
		return NewDevice(), nil
	})
}

// Device runs bloom blits on the CPU.
//
// A Device may be shared by several passes, but commands from different
// goroutines must not be interleaved.
type Device struct {
	mu      sync.Mutex
	workers *parallel.WorkerPool
	pool    *image.Pool
	params  filter.Params
	opts    options
	live    int
	closed  bool
}

// NewDevice creates a CPU device.
func NewDevice(opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Device{
		workers: parallel.NewWorkerPool(o.workers),
		pool:    image.NewPool(o.poolPerBucket),
		opts:    o,
	}
}

// Name returns "software".
func (d *Device) Name() string { return backend.NameSoftware }

// Allocate creates a texture, reusing a pooled buffer when one matches.
func (d *Device) Allocate(desc bloom.TextureDesc) (bloom.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.opts.maxTextureSize || desc.Height > d.opts.maxTextureSize {
		return nil, fmt.Errorf("software: %s: size %dx%d outside [1, %d]",
			desc.Label, desc.Width, desc.Height, d.opts.maxTextureSize)
	}
	buf, err := d.pool.Get(desc.Width, desc.Height, desc.Format)
	if err != nil {
		return nil, fmt.Errorf("software: %s: %w", desc.Label, err)
	}

	d.mu.Lock()
	d.live++
	d.mu.Unlock()

	return &Texture{
		buf:     buf,
		label:   desc.Label,
		filter:  desc.Filter,
		address: desc.AddressMode,
		owner:   d,
	}, nil
}

// Release returns a texture's buffer to the pool. Releasing a texture twice
// or one from another device is ignored.
func (d *Device) Release(tex bloom.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t.owner != d || t.released {
		return
	}
	t.released = true
	d.pool.Put(t.buf)

	d.mu.Lock()
	d.live--
	d.mu.Unlock()
}

// NewTexture allocates a texture with linear clamp-to-edge sampling.
func (d *Device) NewTexture(width, height int, format gputypes.TextureFormat, label string) (bloom.Texture, error) {
	return d.Allocate(bloom.TextureDesc{
		Width:       width,
		Height:      height,
		Format:      format,
		Filter:      gputypes.FilterModeLinear,
		AddressMode: gputypes.AddressModeClampToEdge,
		Label:       label,
	})
}

// LiveTextures returns the number of allocated, unreleased textures.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// SetParams binds the uniforms for subsequent blits.
func (d *Device) SetParams(p bloom.ShaderParams) {
	d.params = filter.Params{
		Scatter:       p.Scatter,
		Clamp:         p.Clamp,
		Threshold:     p.Threshold,
		ThresholdKnee: p.ThresholdKnee,
		HighQuality:   p.HighQuality,
	}
}

// Blit runs a single-input pass from src into dst.
func (d *Device) Blit(src, dst bloom.Texture, pass bloom.PassIndex) error {
	s, err := d.texture(src)
	if err != nil {
		return err
	}
	t, err := d.texture(dst)
	if err != nil {
		return err
	}

	switch pass {
	case bloom.PassPrefilter:
		filter.Prefilter(d.workers, s.buf, t.buf, d.params)
	case bloom.PassDownsample:
		filter.Downsample(d.workers, s.buf, t.buf, d.params.HighQuality)
	case bloom.PassCopy:
		filter.Copy(d.workers, s.buf, t.buf)
	default:
		return fmt.Errorf("software: %s is not a single-input pass", pass)
	}
	return nil
}

// BlitCombine runs the upsample pass, blending low over high into dst.
func (d *Device) BlitCombine(low, high, dst bloom.Texture, pass bloom.PassIndex) error {
	if pass != bloom.PassUpsample {
		return fmt.Errorf("software: %s is not a combine pass", pass)
	}
	l, err := d.texture(low)
	if err != nil {
		return err
	}
	h, err := d.texture(high)
	if err != nil {
		return err
	}
	t, err := d.texture(dst)
	if err != nil {
		return err
	}
	if h.Width() != t.Width() || h.Height() != t.Height() {
		return fmt.Errorf("software: upsample %s into %s: %w", h.label, t.label, bloom.ErrFormatMismatch)
	}
	filter.Upsample(d.workers, l.buf, h.buf, t.buf, d.params.Scatter, d.params.HighQuality)
	return nil
}

// Composite adds bloom * intensity * tint onto frame.
func (d *Device) Composite(frame, bloomTex bloom.Texture, intensity float32, tint [3]float32) error {
	f, err := d.texture(frame)
	if err != nil {
		return err
	}
	b, err := d.texture(bloomTex)
	if err != nil {
		return err
	}
	filter.Composite(d.workers, f.buf, b.buf, intensity, tint)
	return nil
}

// SupportsFormat reports whether the device can store format. Every
// stored format can be sampled, rendered and blended.
func (d *Device) SupportsFormat(format gputypes.TextureFormat, _ bloom.FormatUsage) bool {
	return image.Supported(format)
}

// ColorSpace returns the configured color space.
func (d *Device) ColorSpace() bloom.ColorSpace { return d.opts.colorSpace }

// Upload replaces the texture contents with linear RGBA pixels.
func (d *Device) Upload(tex bloom.Texture, pix []float32) error {
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	w, h := t.buf.Bounds()
	if len(pix) != w*h*4 {
		return fmt.Errorf("%w: %d values for %dx%d", backend.ErrSizeMismatch, len(pix), w, h)
	}
	d.workers.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := pix[y*w*4 : (y+1)*w*4]
			for x := 0; x < w; x++ {
				p := row[x*4 : x*4+4]
				t.buf.Set(x, y, p[0], p[1], p[2], p[3])
			}
		}
	})
	return nil
}

// Download returns the texture contents as linear RGBA pixels.
func (d *Device) Download(tex bloom.Texture) ([]float32, error) {
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	w, h := t.buf.Bounds()
	pix := make([]float32, w*h*4)
	d.workers.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := (y*w + x) * 4
				pix[i], pix[i+1], pix[i+2], pix[i+3] = t.buf.At(x, y)
			}
		}
	})
	return pix, nil
}

// Flush is a no-op: blits complete before they return.
func (d *Device) Flush() error { return nil }

// Close stops the worker pool. Close is safe to call multiple times.
func (d *Device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	live := d.live
	d.mu.Unlock()

	if live > 0 {
		bloom.Logger().Warn("software: device closed with live textures", "count", live)
	}
	d.workers.Close()
}

func (d *Device) texture(tex bloom.Texture) (*Texture, error) {
	if tex == nil {
		return nil, bloom.ErrNilTexture
	}
	t, ok := tex.(*Texture)
	if !ok || t.owner != d {
		return nil, fmt.Errorf("software: %s: %w: texture %T belongs to another device", tex.Label(), bloom.ErrFormatMismatch, tex)
	}
	if t.released {
		return nil, fmt.Errorf("software: %s: texture used after release", t.label)
	}
	return t, nil
}
