package bloom

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Pass is one bloom effect instance. It owns a pyramid and records the
// bloom chain into a device each frame.
//
// A Pass is not safe for concurrent use. Frame N must be retired by the
// host before frame N+1 is rendered, since the pyramid is reused.
type Pass struct {
	name          string
	dev           Device
	format        gputypes.TextureFormat
	pyramid       *Pyramid
	skipOnFailure bool
	plan          PyramidPlan
}

// NewPass creates a bloom pass on dev. The HDR format is chosen once with
// SelectFormat(probe) unless WithFormat is given.
func NewPass(dev Device, probe CapabilityProbe, opts ...PassOption) (*Pass, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}

	o := defaultPassOptions()
	for _, opt := range opts {
		opt(&o)
	}

	format := o.format
	if format == gputypes.TextureFormatUndefined {
		f, err := SelectFormat(probe)
		if err != nil {
			return nil, fmt.Errorf("bloom: pass %q: %w", o.name, err)
		}
		format = f
	}

	Logger().Info("bloom: pass created", "pass", o.name, "format", format)

	return &Pass{
		name:          o.name,
		dev:           dev,
		format:        format,
		pyramid:       NewPyramid(dev),
		skipOnFailure: o.skipOnFailure,
	}, nil
}

// Name returns the pass name.
func (p *Pass) Name() string { return p.name }

// Format returns the pyramid format selected at creation.
func (p *Pass) Format() gputypes.TextureFormat { return p.format }

// Plan returns the plan of the last rendered frame.
func (p *Pass) Plan() PyramidPlan { return p.plan }

// Pyramid returns the pass's pyramid for inspection.
func (p *Pass) Pyramid() *Pyramid { return p.pyramid }

// Render plans, reconciles and runs the bloom chain for source.
// It returns the bloom layer, which is up[0] of the pyramid.
//
// If a pyramid buffer cannot be allocated the frame is skipped: a warning is
// logged, the pyramid keeps its last good state and the error wraps
// ErrSkipped.
func (p *Pass) Render(source Texture, params Params) (Texture, error) {
	if source == nil {
		return nil, ErrNilTexture
	}
	params = params.Normalize()

	plan := Plan(source.Width(), source.Height(), params.MaxIterations)
	stats, err := p.pyramid.Reconcile(plan, p.format)
	if err != nil {
		Logger().Warn("bloom: skipping frame", "pass", p.name, "err", err)
		if p.skipOnFailure {
			return nil, fmt.Errorf("%w: %w", ErrSkipped, err)
		}
		return nil, err
	}
	if stats.Allocated > 0 {
		Logger().Debug("bloom: pyramid resized",
			"pass", p.name,
			"mips", plan.MipCount,
			"top", plan.Levels[0],
			"allocated", stats.Allocated)
	}

	p.plan = plan
	return p.Run(source, plan, params)
}

// Run records the prefilter, downsample and upsample chain for a plan the
// pyramid has already been reconciled to.
//
// Stage A writes source into down[0] with the threshold prefilter, then
// filters each level into the next. Stage B copies the smallest level into
// the up chain and walks back up, blending up[i+1] over down[i] into up[i].
// Levels are recorded strictly in order.
func (p *Pass) Run(source Texture, plan PyramidPlan, params Params) (Texture, error) {
	if source == nil {
		return nil, ErrNilTexture
	}
	if !plan.Valid() {
		return nil, fmt.Errorf("%w: mip count %d", ErrLevelOutOfRange, plan.MipCount)
	}
	n := plan.MipCount
	for i := range n {
		if !matches(p.pyramid.down[i], plan.Levels[i], p.format) || !matches(p.pyramid.up[i], plan.Levels[i], p.format) {
			return nil, fmt.Errorf("%w: level %d not reconciled to %s", ErrNilTexture, i, plan.Levels[i])
		}
	}

	p.dev.SetParams(params.Normalize().Shader())

	down, up := &p.pyramid.down, &p.pyramid.up

	if err := p.dev.Blit(source, down[0], PassPrefilter); err != nil {
		return nil, blitError(PassPrefilter, 0, err)
	}
	for i := 1; i < n; i++ {
		if err := p.dev.Blit(down[i-1], down[i], PassDownsample); err != nil {
			return nil, blitError(PassDownsample, i, err)
		}
	}

	if err := p.dev.Blit(down[n-1], up[n-1], PassCopy); err != nil {
		return nil, blitError(PassCopy, n-1, err)
	}
	for i := n - 2; i >= 0; i-- {
		if err := p.dev.BlitCombine(up[i+1], down[i], up[i], PassUpsample); err != nil {
			return nil, blitError(PassUpsample, i, err)
		}
	}

	return up[0], nil
}

// Composite adds the bloom layer onto frame using the intensity and tint in params.
func (p *Pass) Composite(frame, bloom Texture, params Params) error {
	if frame == nil || bloom == nil {
		return ErrNilTexture
	}
	params = params.Normalize()
	if err := p.dev.Composite(frame, bloom, params.Intensity, params.Tint); err != nil {
		return fmt.Errorf("bloom: composite: %w", err)
	}
	return nil
}

// Close releases the pyramid. The pass must not be used afterwards.
func (p *Pass) Close() {
	p.pyramid.Release()
}

func blitError(pass PassIndex, level int, err error) error {
	return fmt.Errorf("bloom: %s level %d: %w", pass, level, err)
}
