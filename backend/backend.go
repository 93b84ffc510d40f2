package backend

import (
	"errors"

	"github.com/gogpu/bloom"
	"github.com/gogpu/gputypes"
)

// Device names.
const (
	// NameSoftware is the CPU device.
	NameSoftware = "software"
	// NameWGPU is the gogpu/wgpu GPU device.
	NameWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrNotAvailable is returned when a requested device is not registered
	// or could not be opened.
	ErrNotAvailable = errors.New("backend: not available")

	// ErrSizeMismatch is returned when pixel data does not match a texture.
	ErrSizeMismatch = errors.New("backend: pixel data size mismatch")
)

// Device is a bloom device that can also move pixels to and from the host.
type Device interface {
	bloom.Device
	bloom.CapabilityProbe

	// Name returns the registered device name.
	Name() string

	// NewTexture allocates a texture outside any bloom pyramid, such as
	// the frame a pass reads from.
	NewTexture(width, height int, format gputypes.TextureFormat, label string) (bloom.Texture, error)

	// Upload replaces the texture contents with linear RGBA float pixels,
	// row-major, four values per pixel.
	Upload(tex bloom.Texture, pix []float32) error

	// Download returns the texture contents in the layout Upload accepts.
	// Pending commands are flushed first.
	Download(tex bloom.Texture) ([]float32, error)

	// Flush submits recorded commands and waits for them to complete.
	Flush() error

	// Close releases the device. Textures must not be used afterwards.
	Close()
}
