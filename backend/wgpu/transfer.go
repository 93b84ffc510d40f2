//go:build !nogpu

package wgpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/backend"
	"github.com/gogpu/bloom/internal/image"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// rowAlignment is the required BytesPerRow alignment for texture copies.
const rowAlignment = 256

func alignedRow(bytes int) int {
	return (bytes + rowAlignment - 1) / rowAlignment * rowAlignment
}

// Upload encodes pix into the texture format and writes it through the queue.
// Recorded commands are flushed first so they observe the old contents.
func (d *Device) Upload(tex bloom.Texture, pix []float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.texture(tex)
	if err != nil {
		return err
	}
	if want := t.width * t.height * 4; len(pix) != want {
		return fmt.Errorf("wgpu: upload %s: %w: got %d values, want %d", t.label, backend.ErrSizeMismatch, len(pix), want)
	}
	if err := d.flush(); err != nil {
		return err
	}

	buf, err := image.NewBuf(t.width, t.height, t.format)
	if err != nil {
		return fmt.Errorf("wgpu: upload %s: %w", t.label, err)
	}
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			i := (y*t.width + x) * 4
			buf.Set(x, y, pix[i], pix[i+1], pix[i+2], pix[i+3])
		}
	}

	stride := alignedRow(len(buf.Row(0)))
	data := make([]byte, stride*t.height)
	for y := 0; y < t.height; y++ {
		copy(data[y*stride:], buf.Row(y))
	}

	size := t.extent()
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.raw, Aspect: gputypes.TextureAspectAll},
		data,
		&hal.ImageDataLayout{BytesPerRow: uint32(stride), RowsPerImage: uint32(t.height)},
		&size,
	)
	if err != nil {
		return fmt.Errorf("wgpu: upload %s: %w", t.label, err)
	}
	t.usage = t.raw.CurrentUsage()
	if t.usage == 0 {
		t.usage = gputypes.TextureUsageCopyDst
	}
	return nil
}

// Download copies the texture into a staging buffer and decodes it.
func (d *Device) Download(tex bloom.Texture) ([]float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.texture(tex)
	if err != nil {
		return nil, err
	}
	buf, err := image.NewBuf(t.width, t.height, t.format)
	if err != nil {
		return nil, fmt.Errorf("wgpu: download %s: %w", t.label, err)
	}

	rowBytes := len(buf.Row(0))
	stride := alignedRow(rowBytes)
	size := uint64(stride * t.height)
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bloom_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create readback buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.recording()
	if err != nil {
		return nil, err
	}
	if b, ok := t.transition(gputypes.TextureUsageCopySrc); ok {
		enc.TransitionTextures([]hal.TextureBarrier{b})
	}
	enc.CopyTextureToBuffer(t.raw, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: uint32(stride), RowsPerImage: uint32(t.height)},
		TextureBase:  hal.ImageCopyTexture{Texture: t.raw, Aspect: gputypes.TextureAspectAll},
		Size:         t.extent(),
	}})
	if err := d.flush(); err != nil {
		return nil, err
	}

	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map readback buffer: %w", err)
	}
	raw := unsafe.Slice((*byte)(mapping.Ptr), size)
	for y := 0; y < t.height; y++ {
		copy(buf.Row(y), raw[y*stride:y*stride+rowBytes])
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap readback buffer: %w", err)
	}

	pix := make([]float32, t.width*t.height*4)
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			i := (y*t.width + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = buf.At(x, y)
		}
	}
	return pix, nil
}
