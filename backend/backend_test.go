package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/bloom"
	"github.com/gogpu/gputypes"
)

type stubDevice struct {
	name string
}

func (d *stubDevice) Allocate(bloom.TextureDesc) (bloom.Texture, error) {
	return nil, nil
}

func (d *stubDevice) Release(bloom.Texture) {}

func (d *stubDevice) SetParams(bloom.ShaderParams) {}

func (d *stubDevice) Blit(_, _ bloom.Texture, _ bloom.PassIndex) error {
	return nil
}

func (d *stubDevice) BlitCombine(_, _, _ bloom.Texture, _ bloom.PassIndex) error {
	return nil
}

func (d *stubDevice) Composite(_, _ bloom.Texture, _ float32, _ [3]float32) error {
	return nil
}

func (d *stubDevice) SupportsFormat(gputypes.TextureFormat, bloom.FormatUsage) bool {
	return true
}

func (d *stubDevice) ColorSpace() bloom.ColorSpace {
	return bloom.ColorSpaceLinear
}

func (d *stubDevice) Name() string {
	return d.name
}

func (d *stubDevice) NewTexture(int, int, gputypes.TextureFormat, string) (bloom.Texture, error) {
	return nil, nil
}

func (d *stubDevice) Upload(bloom.Texture, []float32) error {
	return nil
}

func (d *stubDevice) Download(bloom.Texture) ([]float32, error) {
	return nil, nil
}

func (d *stubDevice) Flush() error {
	return nil
}

func (d *stubDevice) Close() {}

// withRegistry swaps the registry contents for the duration of a test.
func withRegistry(t *testing.T, entries map[string]Factory) {
	t.Helper()
	registryMu.Lock()
	saved := factories
	factories = entries
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		factories = saved
		registryMu.Unlock()
	})
}

func stubFactory(name string) Factory {
	return func() (Device, error) { return &stubDevice{name: name}, nil }
}

func TestRegisterAndOpen(t *testing.T) {
	withRegistry(t, map[string]Factory{})

	Register("custom", stubFactory("custom"))
	if !IsRegistered("custom") {
		t.Fatal("IsRegistered(custom) = false after Register")
	}
	dev, err := Open("custom")
	if err != nil {
		t.Fatalf("Open(custom) error = %v", err)
	}
	if dev.Name() != "custom" {
		t.Errorf("Name() = %q, want custom", dev.Name())
	}

	Unregister("custom")
	if _, err := Open("custom"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Open after Unregister error = %v, want ErrNotAvailable", err)
	}
}

func TestAvailableSorted(t *testing.T) {
	withRegistry(t, map[string]Factory{
		NameWGPU:     stubFactory(NameWGPU),
		NameSoftware: stubFactory(NameSoftware),
		"alpha":      stubFactory("alpha"),
	})
	want := []string{"alpha", NameSoftware, NameWGPU}
	if got := Available(); !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestDefaultPriority(t *testing.T) {
	withRegistry(t, map[string]Factory{
		NameWGPU:     stubFactory(NameWGPU),
		NameSoftware: stubFactory(NameSoftware),
	})
	dev, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name() != NameWGPU {
		t.Errorf("Default() = %q, want %q", dev.Name(), NameWGPU)
	}
}

func TestDefaultFallsBack(t *testing.T) {
	withRegistry(t, map[string]Factory{
		NameWGPU:     func() (Device, error) { return nil, errors.New("no adapter") },
		NameSoftware: stubFactory(NameSoftware),
	})
	dev, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name() != NameSoftware {
		t.Errorf("Default() = %q, want %q", dev.Name(), NameSoftware)
	}
}

func TestDefaultUnprioritized(t *testing.T) {
	withRegistry(t, map[string]Factory{"other": stubFactory("other")})
	dev, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name() != "other" {
		t.Errorf("Default() = %q, want other", dev.Name())
	}
}

func TestDefaultEmpty(t *testing.T) {
	withRegistry(t, map[string]Factory{})
	if _, err := Default(); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("Default() error = %v, want ErrNotAvailable", err)
	}
}

func TestOpenWrapsFactoryError(t *testing.T) {
	cause := errors.New("boom")
	withRegistry(t, map[string]Factory{"bad": func() (Device, error) { return nil, cause }})
	_, err := Open("bad")
	if !errors.Is(err, ErrNotAvailable) || !errors.Is(err, cause) {
		t.Errorf("Open(bad) error = %v, want ErrNotAvailable wrapping cause", err)
	}
}
