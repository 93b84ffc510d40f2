package bloom

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

var errOutOfMemory = errors.New("out of memory")

type fakeTexture struct {
	desc     TextureDesc
	id       int
	released bool
}

func (t *fakeTexture) Width() int                     { return t.desc.Width }
func (t *fakeTexture) Height() int                    { return t.desc.Height }
func (t *fakeTexture) Format() gputypes.TextureFormat { return t.desc.Format }
func (t *fakeTexture) Label() string                  { return t.desc.Label }

// fakeDevice records every call so tests can assert on the command stream.
type fakeDevice struct {
	nextID    int
	allocs    []TextureDesc
	releases  []string
	commands  []string
	params    []ShaderParams
	failAfter int // allocations allowed before failing; -1 never fails
	failBlit  PassIndex
	blitErr   error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{failAfter: -1, failBlit: -1}
}

func (d *fakeDevice) Allocate(desc TextureDesc) (Texture, error) {
	if d.failAfter >= 0 && len(d.allocs) >= d.failAfter {
		return nil, errOutOfMemory
	}
	d.allocs = append(d.allocs, desc)
	d.nextID++
	return &fakeTexture{desc: desc, id: d.nextID}, nil
}

func (d *fakeDevice) Release(tex Texture) {
	ft := tex.(*fakeTexture)
	ft.released = true
	d.releases = append(d.releases, ft.Label())
}

func (d *fakeDevice) SetParams(p ShaderParams) {
	d.params = append(d.params, p)
}

func (d *fakeDevice) Blit(src, dst Texture, pass PassIndex) error {
	if pass == d.failBlit {
		return d.blitErr
	}
	d.commands = append(d.commands, fmt.Sprintf("%s %s->%s", pass, src.Label(), dst.Label()))
	return nil
}

func (d *fakeDevice) BlitCombine(low, high, dst Texture, pass PassIndex) error {
	if pass == d.failBlit {
		return d.blitErr
	}
	d.commands = append(d.commands, fmt.Sprintf("%s %s+%s->%s", pass, low.Label(), high.Label(), dst.Label()))
	return nil
}

func (d *fakeDevice) Composite(frame, bloom Texture, intensity float32, tint [3]float32) error {
	d.commands = append(d.commands, fmt.Sprintf("Composite %s->%s x%v", bloom.Label(), frame.Label(), intensity))
	return nil
}

// fakeProbe reports support from a fixed set of formats.
type fakeProbe struct {
	supported map[gputypes.TextureFormat]FormatUsage
	space     ColorSpace
}

func (p fakeProbe) SupportsFormat(f gputypes.TextureFormat, usage FormatUsage) bool {
	have, ok := p.supported[f]
	return ok && have.Has(usage)
}

func (p fakeProbe) ColorSpace() ColorSpace { return p.space }

func sourceTexture(w, h int) Texture {
	return &fakeTexture{desc: TextureDesc{Width: w, Height: h, Format: gputypes.TextureFormatRGBA16Float, Label: "_CameraColor"}}
}
