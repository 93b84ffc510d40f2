package bloom

import "errors"

// Sentinel errors returned by bloom and its devices.
var (
	// ErrAllocation reports that the device rejected a pyramid buffer.
	ErrAllocation = errors.New("bloom: buffer allocation failed")

	// ErrSkipped is returned by Pass.Render when bloom was skipped for the
	// frame. The host should present the frame without bloom.
	ErrSkipped = errors.New("bloom: frame skipped")

	// ErrUnsupportedFormat reports that no HDR format is usable on the device.
	ErrUnsupportedFormat = errors.New("bloom: no supported HDR format")

	// ErrNilTexture is returned when a required texture is nil.
	ErrNilTexture = errors.New("bloom: nil texture")

	// ErrNilDevice is returned by NewPass without a device.
	ErrNilDevice = errors.New("bloom: nil device")

	// ErrLevelOutOfRange reports a plan whose mip count is outside [1, MaxPyramidSize].
	ErrLevelOutOfRange = errors.New("bloom: pyramid level out of range")

	// ErrFormatMismatch is returned by a device asked to blit between
	// textures it cannot read or write.
	ErrFormatMismatch = errors.New("bloom: texture format mismatch")
)
