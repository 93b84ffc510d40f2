package bloom

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestSelectFormat(t *testing.T) {
	all := UsageSample | UsageLinear | UsageRender | UsageBlend
	tests := []struct {
		name    string
		probe   CapabilityProbe
		want    gputypes.TextureFormat
		wantErr error
	}{
		{
			name: "packed float available",
			probe: fakeProbe{supported: map[gputypes.TextureFormat]FormatUsage{
				gputypes.TextureFormatRG11B10Ufloat: all,
				gputypes.TextureFormatRGBA8Unorm:    all,
			}},
			want: gputypes.TextureFormatRG11B10Ufloat,
		},
		{
			name: "packed float not renderable, linear space",
			probe: fakeProbe{
				supported: map[gputypes.TextureFormat]FormatUsage{
					gputypes.TextureFormatRG11B10Ufloat:  UsageSample | UsageLinear,
					gputypes.TextureFormatRGBA8UnormSrgb: all,
				},
				space: ColorSpaceLinear,
			},
			want: gputypes.TextureFormatRGBA8UnormSrgb,
		},
		{
			name: "gamma space fallback",
			probe: fakeProbe{
				supported: map[gputypes.TextureFormat]FormatUsage{gputypes.TextureFormatRGBA8Unorm: all},
				space:     ColorSpaceGamma,
			},
			want: gputypes.TextureFormatRGBA8Unorm,
		},
		{
			name: "fallback unsupported",
			probe: fakeProbe{
				supported: map[gputypes.TextureFormat]FormatUsage{gputypes.TextureFormatRGBA8Unorm: all},
				space:     ColorSpaceLinear,
			},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "nil probe",
			probe:   nil,
			wantErr: ErrUnsupportedFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectFormat(tt.probe)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SelectFormat() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SelectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatUsageHas(t *testing.T) {
	u := UsageLinear | UsageRender
	if !u.Has(UsageLinear) || !u.Has(UsageLinear|UsageRender) {
		t.Error("Has() misses set flags")
	}
	if u.Has(UsageBlend) || u.Has(UsageRender|UsageBlend) {
		t.Error("Has() reports unset flags")
	}
}
