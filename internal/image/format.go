// Package image provides HDR image buffers for the software bloom device.
//
// Pixels are stored encoded in one of the GPU texture formats the bloom pass
// may select, so the software device reproduces the precision and range of
// the hardware path. Kernels read and write linear float32 RGBA through
// At/Set and never see the encoding.
package image

import "github.com/gogpu/gputypes"

// formatInfo describes how a texture format is laid out in a Buf.
type formatInfo struct {
	bytesPerPixel int
}

// formatTable lists the storage formats the software device understands.
var formatTable = map[gputypes.TextureFormat]formatInfo{
	gputypes.TextureFormatRG11B10Ufloat:  {bytesPerPixel: 4},
	gputypes.TextureFormatRGBA16Float:    {bytesPerPixel: 8},
	gputypes.TextureFormatRGBA32Float:    {bytesPerPixel: 16},
	gputypes.TextureFormatRGBA8Unorm:     {bytesPerPixel: 4},
	gputypes.TextureFormatRGBA8UnormSrgb: {bytesPerPixel: 4},
}

// Supported reports whether f can back a Buf.
func Supported(f gputypes.TextureFormat) bool {
	_, ok := formatTable[f]
	return ok
}

// BytesPerPixel returns the storage size of one pixel, or 0 if f is unsupported.
func BytesPerPixel(f gputypes.TextureFormat) int {
	return formatTable[f].bytesPerPixel
}
