package software

import (
	"errors"
	"testing"

	"github.com/gogpu/bloom"
	"github.com/gogpu/bloom/backend"
	"github.com/gogpu/gputypes"
)

func newTestDevice(t *testing.T, opts ...Option) *Device {
	t.Helper()
	d := NewDevice(append([]Option{WithWorkers(2)}, opts...)...)
	t.Cleanup(d.Close)
	return d
}

func mustTexture(t *testing.T, d *Device, w, h int, format gputypes.TextureFormat) bloom.Texture {
	t.Helper()
	tex, err := d.NewTexture(w, h, format, "test")
	if err != nil {
		t.Fatalf("NewTexture(%d, %d): %v", w, h, err)
	}
	return tex
}

func TestDeviceRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.NameSoftware) {
		t.Fatal("software device not registered")
	}
	dev, err := backend.Open(backend.NameSoftware)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	if dev.Name() != backend.NameSoftware {
		t.Errorf("Name() = %q, want %q", dev.Name(), backend.NameSoftware)
	}
}

func TestAllocate(t *testing.T) {
	d := newTestDevice(t, WithMaxTextureSize(1024))

	tests := []struct {
		name    string
		desc    bloom.TextureDesc
		wantErr bool
	}{
		{"packed float", bloom.TextureDesc{Width: 64, Height: 32, Format: gputypes.TextureFormatRG11B10Ufloat}, false},
		{"srgb", bloom.TextureDesc{Width: 1, Height: 1, Format: gputypes.TextureFormatRGBA8UnormSrgb}, false},
		{"zero size", bloom.TextureDesc{Width: 0, Height: 32, Format: gputypes.TextureFormatRGBA16Float}, true},
		{"over limit", bloom.TextureDesc{Width: 2048, Height: 32, Format: gputypes.TextureFormatRGBA16Float}, true},
		{"depth", bloom.TextureDesc{Width: 4, Height: 4, Format: gputypes.TextureFormatDepth32Float}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := d.Allocate(tt.desc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Allocate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tex.Width() != tt.desc.Width || tex.Height() != tt.desc.Height || tex.Format() != tt.desc.Format {
				t.Errorf("texture = %dx%d %v, want %dx%d %v",
					tex.Width(), tex.Height(), tex.Format(), tt.desc.Width, tt.desc.Height, tt.desc.Format)
			}
			d.Release(tex)
		})
	}
}

func TestReleaseReusesBuffers(t *testing.T) {
	d := newTestDevice(t)

	a := mustTexture(t, d, 16, 16, gputypes.TextureFormatRGBA16Float)
	if d.LiveTextures() != 1 {
		t.Fatalf("LiveTextures() = %d, want 1", d.LiveTextures())
	}
	buf := a.(*Texture).buf
	d.Release(a)
	d.Release(a)
	if d.LiveTextures() != 0 {
		t.Fatalf("LiveTextures() after double release = %d, want 0", d.LiveTextures())
	}

	b := mustTexture(t, d, 16, 16, gputypes.TextureFormatRGBA16Float)
	if b.(*Texture).buf != buf {
		t.Error("released buffer was not reused")
	}
	if err := d.Blit(a, b, bloom.PassCopy); err == nil {
		t.Error("Blit from released texture succeeded")
	}
}

func TestUploadDownload(t *testing.T) {
	d := newTestDevice(t)
	tex := mustTexture(t, d, 3, 2, gputypes.TextureFormatRGBA32Float)

	pix := []float32{
		0, 1, 2, 1, 3, 4, 5, 1, 6, 7, 8, 1,
		9, 10, 11, 1, 12, 13, 14, 1, 15, 16, 17, 0.5,
	}
	if err := d.Upload(tex, pix); err != nil {
		t.Fatal(err)
	}
	got, err := d.Download(tex)
	if err != nil {
		t.Fatal(err)
	}
	for i := range pix {
		if got[i] != pix[i] {
			t.Fatalf("Download()[%d] = %v, want %v", i, got[i], pix[i])
		}
	}

	if err := d.Upload(tex, pix[:4]); !errors.Is(err, backend.ErrSizeMismatch) {
		t.Errorf("Upload(short) error = %v, want ErrSizeMismatch", err)
	}
}

func TestBlitErrors(t *testing.T) {
	d := newTestDevice(t)
	a := mustTexture(t, d, 8, 8, gputypes.TextureFormatRGBA16Float)
	b := mustTexture(t, d, 4, 4, gputypes.TextureFormatRGBA16Float)

	if err := d.Blit(nil, b, bloom.PassCopy); !errors.Is(err, bloom.ErrNilTexture) {
		t.Errorf("Blit(nil) error = %v, want ErrNilTexture", err)
	}
	if err := d.Blit(a, b, bloom.PassUpsample); err == nil {
		t.Error("Blit(PassUpsample) succeeded")
	}
	if err := d.BlitCombine(b, b, a, bloom.PassUpsample); !errors.Is(err, bloom.ErrFormatMismatch) {
		t.Errorf("BlitCombine(size mismatch) error = %v, want ErrFormatMismatch", err)
	}
	if err := d.BlitCombine(b, a, a, bloom.PassCopy); err == nil {
		t.Error("BlitCombine(PassCopy) succeeded")
	}

	other := NewDevice(WithWorkers(1))
	defer other.Close()
	foreign := mustTexture(t, other, 4, 4, gputypes.TextureFormatRGBA16Float)
	if err := d.Blit(a, foreign, bloom.PassDownsample); !errors.Is(err, bloom.ErrFormatMismatch) {
		t.Errorf("Blit(foreign) error = %v, want ErrFormatMismatch", err)
	}
}

func TestSupportsFormat(t *testing.T) {
	d := newTestDevice(t, WithColorSpace(bloom.ColorSpaceGamma))

	if !d.SupportsFormat(gputypes.TextureFormatRG11B10Ufloat, bloom.UsageLinear|bloom.UsageRender) {
		t.Error("RG11B10Ufloat unsupported")
	}
	if d.SupportsFormat(gputypes.TextureFormatBGRA8Unorm, bloom.UsageRender) {
		t.Error("BGRA8Unorm reported as supported")
	}
	if d.ColorSpace() != bloom.ColorSpaceGamma {
		t.Errorf("ColorSpace() = %v, want Gamma", d.ColorSpace())
	}

	f, err := bloom.SelectFormat(d)
	if err != nil || f != gputypes.TextureFormatRG11B10Ufloat {
		t.Errorf("SelectFormat(device) = %v, %v; want RG11B10Ufloat", f, err)
	}
}
