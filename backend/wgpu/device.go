//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/backend"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Common errors.
var (
	// ErrNoAdapter is returned by Open when no backend offers a usable adapter.
	ErrNoAdapter = errors.New("wgpu: no suitable adapter")

	// ErrTimeout is returned when a submission does not complete in time.
	ErrTimeout = errors.New("wgpu: timed out waiting for the GPU")

	// ErrClosed is returned by operations on a closed device.
	ErrClosed = errors.New("wgpu: device closed")

	// ErrNoHAL is returned by FromProvider when the provider does not
	// expose HAL handles.
	ErrNoHAL = errors.New("wgpu: provider does not expose HAL device and queue")
)

func init() {
	backend.Register(backend.NameWGPU, func() (backend.Device, error) {
		return Open()
	})
}

// transient holds resources referenced by recorded commands. They are
// destroyed once the submission using them has completed.
type transient struct {
	uniform hal.Buffer
	group   hal.BindGroup
	texture hal.Texture
	view    hal.TextureView
}

// Device runs bloom blits on a HAL device.
//
// Device is safe for concurrent use, but commands from different passes
// interleave in recording order.
type Device struct {
	mu       sync.Mutex
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo
	owned    bool
	maxSize  int
	opts     options

	pipes   *pipelines
	params  bloom.ShaderParams
	encoder hal.CommandEncoder
	pending []transient
	live    int
	closed  bool
}

// Open creates a standalone device on the first backend in the configured
// order that offers a hardware adapter. Discrete and integrated GPUs are
// preferred over other adapter types.
func Open(opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	variants := o.backends
	if o.allowSoftware {
		variants = append(variants[:len(variants):len(variants)], gputypes.BackendEmpty)
	}

	var errs []error
	for _, variant := range variants {
		b, ok := hal.GetBackend(variant)
		if !ok {
			continue
		}
		d, err := openBackend(b, o)
		if err == nil {
			return d, nil
		}
		errs = append(errs, fmt.Errorf("%v: %w", variant, err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no HAL backend registered", ErrNoAdapter)
	}
	return nil, errors.Join(errs...)
}

func openBackend(b hal.Backend, o options) (*Device, error) {
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	selected := selectAdapter(instance.EnumerateAdapters(nil), o.allowSoftware)
	if selected == nil {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	d, err := newDevice(selected.Adapter, openDev.Device, openDev.Queue, selected.Info, o)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.owned = true
	if limit := selected.Capabilities.Limits.MaxTextureDimension2D; limit > 0 {
		d.maxSize = int(limit)
	}

	bloom.Logger().Info("wgpu: device opened",
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType,
		"backend", b.Variant())
	return d, nil
}

// selectAdapter picks a discrete or integrated GPU, then any other
// non-CPU adapter, then a CPU adapter if allowed.
func selectAdapter(adapters []hal.ExposedAdapter, allowSoftware bool) *hal.ExposedAdapter {
	var other, cpu *hal.ExposedAdapter
	for i := range adapters {
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			return &adapters[i]
		case gputypes.DeviceTypeCPU:
			if cpu == nil {
				cpu = &adapters[i]
			}
		default:
			if other == nil {
				other = &adapters[i]
			}
		}
	}
	if other != nil {
		return other
	}
	if allowSoftware {
		return cpu
	}
	return nil
}

// FromProvider creates a device on a GPU owned by the host application.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. Closing the returned Device leaves the
// provider's device open.
func FromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, bloom.ErrNilDevice
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}
	adapter, _ := provider.Adapter().(hal.Adapter)

	ai := provider.AdapterInfo()
	info := gputypes.AdapterInfo{Name: ai.Name, DeviceType: deviceType(ai.Type)}
	return NewDevice(adapter, device, queue, info, opts...)
}

// NewDevice wraps an open HAL device and queue. adapter may be nil, in
// which case format support is limited to formats every WebGPU device
// guarantees. The caller keeps ownership of device and queue.
func NewDevice(adapter hal.Adapter, device hal.Device, queue hal.Queue, info gputypes.AdapterInfo, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, bloom.ErrNilDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newDevice(adapter, device, queue, info, o)
}

func newDevice(adapter hal.Adapter, device hal.Device, queue hal.Queue, info gputypes.AdapterInfo, o options) (*Device, error) {
	pipes, err := newPipelines(device)
	if err != nil {
		return nil, err
	}
	return &Device{
		adapter: adapter,
		device:  device,
		queue:   queue,
		info:    info,
		maxSize: int(gputypes.DefaultLimits().MaxTextureDimension2D),
		opts:    o,
		pipes:   pipes,
	}, nil
}

// Name returns "wgpu".
func (d *Device) Name() string { return backend.NameWGPU }

// Info returns the HAL adapter description.
func (d *Device) Info() gputypes.AdapterInfo { return d.info }

// AdapterInfo returns the adapter name and type in gpucontext terms.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: d.info.Name, Type: adapterType(d.info.DeviceType)}
}

// HalDevice returns the underlying hal.Device.
func (d *Device) HalDevice() any { return d.device }

// HalQueue returns the underlying hal.Queue.
func (d *Device) HalQueue() any { return d.queue }

// Allocate creates a texture usable as a render target, a sampled texture
// and a copy source or destination.
func (d *Device) Allocate(desc bloom.TextureDesc) (bloom.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > d.maxSize || desc.Height > d.maxSize {
		return nil, fmt.Errorf("wgpu: %s: size %dx%d outside [1, %d]",
			desc.Label, desc.Width, desc.Height, d.maxSize)
	}

	size := hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1}
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         textureUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %s: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(raw)
		return nil, fmt.Errorf("wgpu: create view %s: %w", desc.Label, err)
	}

	d.live++
	return &Texture{
		raw:     raw,
		view:    view,
		width:   desc.Width,
		height:  desc.Height,
		format:  desc.Format,
		label:   desc.Label,
		filter:  desc.Filter,
		address: desc.AddressMode,
		owner:   d,
	}, nil
}

// Release frees a texture. Textures referenced by unsubmitted commands are
// destroyed after the next Flush. Releasing twice is a no-op.
func (d *Device) Release(tex bloom.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.owner != d {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	d.live--

	res := transient{texture: t.raw, view: t.view}
	if d.encoder != nil {
		d.pending = append(d.pending, res)
		return
	}
	d.destroy(res)
}

// NewTexture allocates a linear, clamp-to-edge texture.
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

// SetParams sets the uniforms for the following blits.
func (d *Device) SetParams(p bloom.ShaderParams) {
	d.mu.Lock()
	d.params = p
	d.mu.Unlock()
}

// Blit records a render pass drawing src into dst with the given pass.
func (d *Device) Blit(src, dst bloom.Texture, pass bloom.PassIndex) error {
	entry, ok := entryPoint(pass)
	if !ok || pass == bloom.PassUpsample {
		return fmt.Errorf("wgpu: blit: pass %s needs a single source", pass)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	s, err := d.texture(src)
	if err != nil {
		return err
	}
	t, err := d.texture(dst)
	if err != nil {
		return err
	}
	return d.draw(entry, s, s, t, d.uniforms(s, [3]float32{}), gputypes.LoadOpClear)
}

// BlitCombine records the upsample of low blended over high into dst.
func (d *Device) BlitCombine(low, high, dst bloom.Texture, pass bloom.PassIndex) error {
	if pass != bloom.PassUpsample {
		return fmt.Errorf("wgpu: combine: unsupported pass %s", pass)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	lo, err := d.texture(low)
	if err != nil {
		return err
	}
	hi, err := d.texture(high)
	if err != nil {
		return err
	}
	t, err := d.texture(dst)
	if err != nil {
		return err
	}
	if hi.width != t.width || hi.height != t.height {
		return fmt.Errorf("wgpu: combine: %w: high %dx%d, dst %dx%d",
			bloom.ErrFormatMismatch, hi.width, hi.height, t.width, t.height)
	}
	return d.draw(entryUpsample, lo, hi, t, d.uniforms(lo, [3]float32{}), gputypes.LoadOpClear)
}

// Composite records an additive draw of bloom * intensity * tint over frame.
func (d *Device) Composite(frame, bloomTex bloom.Texture, intensity float32, tint [3]float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.texture(frame)
	if err != nil {
		return err
	}
	b, err := d.texture(bloomTex)
	if err != nil {
		return err
	}
	scaled := [3]float32{tint[0] * intensity, tint[1] * intensity, tint[2] * intensity}
	return d.draw(entryComposite, b, b, f, d.uniforms(b, scaled), gputypes.LoadOpLoad)
}

// uniforms packs the Uniforms struct of bloom.wgsl for sampling src.
func (d *Device) uniforms(src *Texture, tint [3]float32) []byte {
	hq := float32(0)
	if d.params.HighQuality {
		hq = 1
	}
	v := d.params.Vec4()
	values := [uniformSize / 4]float32{
		v[0], v[1], v[2], v[3],
		1 / float32(src.width), 1 / float32(src.height), hq, 0,
		tint[0], tint[1], tint[2], 0,
	}
	buf := make([]byte, uniformSize)
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// draw records one fullscreen pass. d.mu must be held.
func (d *Device) draw(entry string, src, second, dst *Texture, uniforms []byte, load gputypes.LoadOp) error {
	if src == dst || second == dst {
		return fmt.Errorf("wgpu: %s: %s is both source and target", entry, dst.label)
	}
	pipeline, err := d.pipes.get(entry, dst.format)
	if err != nil {
		return err
	}
	enc, err := d.recording()
	if err != nil {
		return err
	}

	ub, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bloom_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	if err := d.queue.WriteBuffer(ub, 0, uniforms); err != nil {
		d.device.DestroyBuffer(ub)
		return fmt.Errorf("wgpu: write uniforms: %w", err)
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "bloom_bind_group",
		Layout: d.pipes.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Size: uniformSize}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: d.pipes.sampler.NativeHandle()}},
			{Binding: 2, Resource: gputypes.TextureViewBinding{TextureView: src.view.NativeHandle()}},
			{Binding: 3, Resource: gputypes.TextureViewBinding{TextureView: second.view.NativeHandle()}},
		},
	})
	if err != nil {
		d.device.DestroyBuffer(ub)
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	d.pending = append(d.pending, transient{uniform: ub, group: group})

	var barriers []hal.TextureBarrier
	for _, tr := range []struct {
		tex   *Texture
		usage gputypes.TextureUsage
	}{
		{src, gputypes.TextureUsageTextureBinding},
		{second, gputypes.TextureUsageTextureBinding},
		{dst, gputypes.TextureUsageRenderAttachment},
	} {
		if b, ok := tr.tex.transition(tr.usage); ok {
			barriers = append(barriers, b)
		}
	}
	if len(barriers) > 0 {
		enc.TransitionTextures(barriers)
	}

	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "bloom_" + entry,
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       dst.view,
				LoadOp:     load,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()
	return nil
}

// recording returns the open command encoder, starting one if needed.
func (d *Device) recording() (hal.CommandEncoder, error) {
	if d.encoder != nil {
		return d.encoder, nil
	}
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "bloom"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("bloom"); err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	d.encoder = enc
	return enc, nil
}

// Flush submits recorded commands and waits for them to complete.
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flush()
}

func (d *Device) flush() error {
	if d.encoder == nil {
		return nil
	}
	enc := d.encoder
	d.encoder = nil

	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		d.releasePending()
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.device.FreeCommandBuffer(cmd)
		enc.Destroy()
		d.releasePending()
		return fmt.Errorf("wgpu: submit: %w", err)
	}

	// On timeout the GPU may still read the pending resources, so they stay
	// queued for a later flush or Close.
	if err := d.wait(index); err != nil {
		return err
	}
	d.device.FreeCommandBuffer(cmd)
	enc.Destroy()
	d.releasePending()
	return nil
}

func (d *Device) wait(index uint64) error {
	deadline := time.Now().Add(d.opts.timeout)
	for d.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrTimeout, index, d.opts.timeout)
		}
		time.Sleep(50 * time.Microsecond)
	}
	return nil
}

func (d *Device) releasePending() {
	for _, res := range d.pending {
		d.destroy(res)
	}
	d.pending = d.pending[:0]
}

func (d *Device) destroy(res transient) {
	if res.group != nil {
		d.device.DestroyBindGroup(res.group)
	}
	if res.uniform != nil {
		d.device.DestroyBuffer(res.uniform)
	}
	if res.view != nil {
		d.device.DestroyTextureView(res.view)
	}
	if res.texture != nil {
		d.device.DestroyTexture(res.texture)
	}
}

// Close flushes pending work and releases the device's GPU objects. A
// device from Open also destroys the HAL device and instance.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true

	if err := d.flush(); err != nil {
		bloom.Logger().Warn("wgpu: flush on close failed", "err", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		bloom.Logger().Warn("wgpu: wait idle failed", "err", err)
	}
	d.releasePending()
	d.pipes.destroy()
	if d.live > 0 {
		bloom.Logger().Warn("wgpu: device closed with live textures", "count", d.live)
	}

	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
}

// texture resolves tex to a live texture of this device. d.mu must be held.
func (d *Device) texture(tex bloom.Texture) (*Texture, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if tex == nil {
		return nil, bloom.ErrNilTexture
	}
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.owner != d {
		return nil, fmt.Errorf("wgpu: %w: texture %T belongs to another device", bloom.ErrFormatMismatch, tex)
	}
	if t.released {
		return nil, fmt.Errorf("wgpu: %s: %w: texture released", t.label, bloom.ErrNilTexture)
	}
	return t, nil
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

func deviceType(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}
