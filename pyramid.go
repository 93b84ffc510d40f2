package bloom

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Debug names of the pyramid levels, as seen in GPU captures.
var (
	downNames [MaxPyramidSize]string
	upNames   [MaxPyramidSize]string
)

func init() {
	for i := range MaxPyramidSize {
		downNames[i] = fmt.Sprintf("_BloomMipDown%d", i)
		upNames[i] = fmt.Sprintf("_BloomMipUp%d", i)
	}
}

// Pyramid owns the down and up chains of a bloom pass.
//
// Slots are allocated lazily by Reconcile and reused across frames. Slots
// beyond the current plan keep whatever they held last, so a mip count that
// oscillates near a boundary does not thrash the allocator.
//
// A Pyramid is not safe for concurrent use.
type Pyramid struct {
	alloc Allocator
	down  [MaxPyramidSize]Texture
	up    [MaxPyramidSize]Texture
}

// ReconcileStats reports what a Reconcile call did.
type ReconcileStats struct {
	// Allocated counts textures created, across both chains.
	Allocated int

	// Reused counts textures kept as they were.
	Reused int
}

// NewPyramid returns an empty pyramid allocating from alloc.
func NewPyramid(alloc Allocator) *Pyramid {
	return &Pyramid{alloc: alloc}
}

// Reconcile makes every level in plan match its planned size and format.
//
// A slot is reallocated only when it is empty or its width, height or
// format differ. All replacements are allocated before any slot changes; if
// one allocation fails, the replacements made so far are released, the
// pyramid is left as it was and the returned error wraps ErrAllocation.
func (p *Pyramid) Reconcile(plan PyramidPlan, format gputypes.TextureFormat) (ReconcileStats, error) {
	var stats ReconcileStats
	if !plan.Valid() {
		return stats, fmt.Errorf("%w: mip count %d", ErrLevelOutOfRange, plan.MipCount)
	}

	var down, up [MaxPyramidSize]Texture
	for i := range plan.MipCount {
		size := plan.Levels[i]
		if err := p.stage(&down[i], p.down[i], size, format, downNames[i], &stats); err != nil {
			p.discard(&down, &up)
			return ReconcileStats{}, err
		}
		if err := p.stage(&up[i], p.up[i], size, format, upNames[i], &stats); err != nil {
			p.discard(&down, &up)
			return ReconcileStats{}, err
		}
	}

	for i := range plan.MipCount {
		p.swap(&p.down[i], down[i])
		p.swap(&p.up[i], up[i])
	}
	return stats, nil
}

// stage allocates a replacement for cur into *staged unless cur already
// matches.
func (p *Pyramid) stage(staged *Texture, cur Texture, size Size, format gputypes.TextureFormat, name string, stats *ReconcileStats) error {
	if matches(cur, size, format) {
		stats.Reused++
		return nil
	}

	tex, err := p.alloc.Allocate(TextureDesc{
		Width:       size.Width,
		Height:      size.Height,
		Format:      format,
		Filter:      gputypes.FilterModeLinear,
		AddressMode: gputypes.AddressModeClampToEdge,
		Label:       name,
	})
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrAllocation, name, size, err)
	}
	if tex == nil {
		return fmt.Errorf("%w: %s %s: allocator returned nil", ErrAllocation, name, size)
	}
	*staged = tex
	stats.Allocated++

	Logger().Debug("bloom: level allocated", "name", name, "size", size, "format", format)
	return nil
}

// discard releases staged replacements after a failed reconcile.
func (p *Pyramid) discard(down, up *[MaxPyramidSize]Texture) {
	for i := range MaxPyramidSize {
		if down[i] != nil {
			p.alloc.Release(down[i])
		}
		if up[i] != nil {
			p.alloc.Release(up[i])
		}
	}
}

// swap installs a staged texture into slot and releases the one it replaces.
func (p *Pyramid) swap(slot *Texture, staged Texture) {
	if staged == nil {
		return
	}
	if old := *slot; old != nil {
		p.alloc.Release(old)
	}
	*slot = staged
}

func matches(tex Texture, size Size, format gputypes.TextureFormat) bool {
	return tex != nil &&
		tex.Width() == size.Width &&
		tex.Height() == size.Height &&
		tex.Format() == format
}

// Down returns level i of the down chain, or nil if it is empty or out of range.
func (p *Pyramid) Down(i int) Texture {
	if i < 0 || i >= MaxPyramidSize {
		return nil
	}
	return p.down[i]
}

// Up returns level i of the up chain, or nil if it is empty or out of range.
func (p *Pyramid) Up(i int) Texture {
	if i < 0 || i >= MaxPyramidSize {
		return nil
	}
	return p.up[i]
}

// Allocated returns the number of non-empty slots across both chains.
func (p *Pyramid) Allocated() int {
	n := 0
	for i := range MaxPyramidSize {
		if p.down[i] != nil {
			n++
		}
		if p.up[i] != nil {
			n++
		}
	}
	return n
}

// Capacity returns the number of slots in each chain.
func (p *Pyramid) Capacity() int {
	return MaxPyramidSize
}

// Release frees every slot. The pyramid can be reconciled again afterwards.
func (p *Pyramid) Release() {
	for i := range MaxPyramidSize {
		if p.down[i] != nil {
			p.alloc.Release(p.down[i])
			p.down[i] = nil
		}
		if p.up[i] != nil {
			p.alloc.Release(p.up[i])
			p.up[i] = nil
		}
	}
}
