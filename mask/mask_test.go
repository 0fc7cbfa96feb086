package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagValues(t *testing.T) {
	// Bit assignments follow the VIS image bit-mask catalog and must never
	// shift without a FormatVersion bump.
	expected := map[Mask]int32{
		HotPixel:            1,
		ColdPixel:           2,
		SaturatedPixel:      4,
		CosmicRay:           8,
		SatelliteTrail:      16,
		InterpolatedPixel:   32,
		Bleeding:            64,
		Onboard:             128,
		BadPixel:            256,
		NonlinearPixel:      512,
		PersistentCharge:    1024,
		Ghost:               2048,
		TransientObject:     4096,
		ExtendedObject:      8192,
		ScatteredLight:      16384,
		ChargeInjection:     32768,
		NearChargeInjection: 65536,
		OffImage:            131072,
		NearEdge:            262144,
	}

	for flag, value := range expected {
		assert.Equal(t, value, int32(flag))
	}
}

func TestBadExcludesInterpolatedAndSuspect(t *testing.T) {
	assert.Zero(t, Bad&InterpolatedPixel)
	assert.Zero(t, Bad&NearChargeInjection)
	assert.Zero(t, Bad&NearEdge)

	for _, flag := range []Mask{
		HotPixel, ColdPixel, SaturatedPixel, CosmicRay, SatelliteTrail,
		Bleeding, Onboard, BadPixel, NonlinearPixel, PersistentCharge,
		Ghost, TransientObject, ExtendedObject, ScatteredLight,
		ChargeInjection, OffImage,
	} {
		assert.NotZero(t, Bad&flag, "Bad should include %s", flag)
	}
}

func TestSuspectFlags(t *testing.T) {
	assert.Equal(t, NearChargeInjection|NearEdge, Suspect)
	assert.Equal(t, Bad|Suspect, SuspectOrBad)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name         string
		m            Mask
		bad          bool
		suspect      bool
		suspectOrBad bool
		any          bool
	}{
		{"clear", 0, false, false, false, false},
		{"hot", HotPixel, true, false, true, true},
		{"interpolated", InterpolatedPixel, false, false, false, true},
		{"nearEdge", NearEdge, false, true, true, true},
		{"hot and nearEdge", HotPixel | NearEdge, true, true, true, true},
		{"offImage", OffImage, true, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.bad, IsMaskedBad(tt.m))
			assert.Equal(t, tt.suspect, IsMaskedSuspect(tt.m))
			assert.Equal(t, tt.suspectOrBad, IsMaskedSuspectOrBad(tt.m))
			assert.Equal(t, tt.any, AsBool(tt.m))
		})
	}
}

func TestIsMaskedWith(t *testing.T) {
	m := SaturatedPixel | Ghost

	assert.True(t, IsMaskedWith(m, Ghost))
	assert.True(t, IsMaskedWith(m, Ghost|CosmicRay))
	assert.False(t, IsMaskedWith(m, CosmicRay))
}

func TestMaskString(t *testing.T) {
	assert.Equal(t, "None", Mask(0).String())
	assert.Equal(t, "HotPixel", HotPixel.String())
	assert.Equal(t, "HotPixel|SaturatedPixel", (HotPixel | SaturatedPixel).String())
	assert.Equal(t, "NearChargeInjection|NearEdge", Suspect.String())
}
