package image

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/bloom/internal/color"
	"github.com/gogpu/gputypes"
	"github.com/mrjoshuak/go-openexr/half"
)

// Largest finite values of the unsigned small-float formats.
const (
	maxFloat11 = 65024
	maxFloat10 = 64512
)

// encodePixel writes linear RGBA into p using format f.
func encodePixel(f gputypes.TextureFormat, p []byte, r, g, b, a float32) {
	switch f {
	case gputypes.TextureFormatRG11B10Ufloat:
		binary.LittleEndian.PutUint32(p, PackRG11B10(r, g, b))
	case gputypes.TextureFormatRGBA16Float:
		binary.LittleEndian.PutUint16(p[0:], half.FromFloat32(r).Bits())
		binary.LittleEndian.PutUint16(p[2:], half.FromFloat32(g).Bits())
		binary.LittleEndian.PutUint16(p[4:], half.FromFloat32(b).Bits())
		binary.LittleEndian.PutUint16(p[6:], half.FromFloat32(a).Bits())
	case gputypes.TextureFormatRGBA32Float:
		binary.LittleEndian.PutUint32(p[0:], math.Float32bits(r))
		binary.LittleEndian.PutUint32(p[4:], math.Float32bits(g))
		binary.LittleEndian.PutUint32(p[8:], math.Float32bits(b))
		binary.LittleEndian.PutUint32(p[12:], math.Float32bits(a))
	case gputypes.TextureFormatRGBA8UnormSrgb:
		p[0] = color.EncodeSRGB8(r)
		p[1] = color.EncodeSRGB8(g)
		p[2] = color.EncodeSRGB8(b)
		p[3] = color.EncodeUnorm8(a)
	case gputypes.TextureFormatRGBA8Unorm:
		p[0] = color.EncodeUnorm8(r)
		p[1] = color.EncodeUnorm8(g)
		p[2] = color.EncodeUnorm8(b)
		p[3] = color.EncodeUnorm8(a)
	}
}

// decodePixel reads linear RGBA from p using format f.
func decodePixel(f gputypes.TextureFormat, p []byte) (r, g, b, a float32) {
	switch f {
	case gputypes.TextureFormatRG11B10Ufloat:
		r, g, b = UnpackRG11B10(binary.LittleEndian.Uint32(p))
		return r, g, b, 1
	case gputypes.TextureFormatRGBA16Float:
		return half.FromBits(binary.LittleEndian.Uint16(p[0:])).Float32(),
			half.FromBits(binary.LittleEndian.Uint16(p[2:])).Float32(),
			half.FromBits(binary.LittleEndian.Uint16(p[4:])).Float32(),
			half.FromBits(binary.LittleEndian.Uint16(p[6:])).Float32()
	case gputypes.TextureFormatRGBA32Float:
		return math.Float32frombits(binary.LittleEndian.Uint32(p[0:])),
			math.Float32frombits(binary.LittleEndian.Uint32(p[4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(p[8:])),
			math.Float32frombits(binary.LittleEndian.Uint32(p[12:]))
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return color.DecodeSRGB8(p[0]), color.DecodeSRGB8(p[1]), color.DecodeSRGB8(p[2]), color.DecodeUnorm8(p[3])
	case gputypes.TextureFormatRGBA8Unorm:
		return color.DecodeUnorm8(p[0]), color.DecodeUnorm8(p[1]), color.DecodeUnorm8(p[2]), color.DecodeUnorm8(p[3])
	}
	return 0, 0, 0, 0
}

// PackRG11B10 encodes linear RGB into the packed unsigned float layout
// shared by WebGPU rg11b10ufloat and Vulkan B10G11R11_UFLOAT_PACK32:
// red in bits 0-10, green in 11-21, blue in 22-31.
// Negative and NaN inputs encode as 0; values past the format range saturate.
func PackRG11B10(r, g, b float32) uint32 {
	return uint32(packSmallFloat(r, 6, maxFloat11)) |
		uint32(packSmallFloat(g, 6, maxFloat11))<<11 |
		uint32(packSmallFloat(b, 5, maxFloat10))<<22
}

// UnpackRG11B10 decodes a value produced by PackRG11B10.
func UnpackRG11B10(v uint32) (r, g, b float32) {
	return unpackSmallFloat(uint16(v&0x7FF), 6),
		unpackSmallFloat(uint16((v>>11)&0x7FF), 6),
		unpackSmallFloat(uint16((v>>22)&0x3FF), 5)
}

// packSmallFloat converts v to an unsigned float with a 5-bit exponent
// (bias 15, same as binary16) and mantBits of mantissa. The conversion goes
// through half precision and rounds the dropped mantissa bits to nearest.
func packSmallFloat(v float32, mantBits uint, limit float32) uint16 {
	if !(v > 0) {
		return 0
	}
	v = min(v, limit)
	bits := half.FromFloat32(v).Bits() & 0x7FFF
	drop := 10 - mantBits
	bits += 1 << (drop - 1)
	return bits >> drop
}

// unpackSmallFloat widens an unsigned small float back to binary16 and then float32.
func unpackSmallFloat(v uint16, mantBits uint) float32 {
	return half.FromBits(v << (10 - mantBits)).Float32()
}
