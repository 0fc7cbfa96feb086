// Package mask defines the pixel mask bits of VIS detector images and
// predicates for testing them.
//
// A mask plane stores one Mask value per pixel, the bitwise OR of every
// condition flagged for it. The bit assignments follow the VIS image
// bit-mask catalog; Bad and Suspect collect the bits shear measurement
// treats as unusable and as usable-with-caution respectively.
package mask

import "strings"

// Mask format identification, written alongside mask planes so readers can
// detect bit-assignment changes. Bump the version on any non-trivial change
// to the flag definitions.
const (
	FormatLabel   = "MSK_FMT_V"
	FormatVersion = "0.2"
)

// Mask is a bitwise OR of pixel condition flags, stored as int32 in mask
// planes.
type Mask int32

// Pixel condition flags.
const (
	// HotPixel marks a hot pixel.
	HotPixel Mask = 1 << iota
	// ColdPixel marks a cold (dead) pixel.
	ColdPixel
	// SaturatedPixel marks a saturated pixel.
	SaturatedPixel
	// CosmicRay marks a cosmic ray hit.
	CosmicRay
	// SatelliteTrail marks a satellite trail crossing.
	SatelliteTrail
	// InterpolatedPixel marks a pixel whose value was interpolated.
	// Interpolated pixels are usable and deliberately not part of Bad.
	InterpolatedPixel
	// Bleeding marks charge bleeding from a saturated neighbor.
	Bleeding
	// Onboard marks a pixel corrected by onboard processing.
	Onboard
	// BadPixel marks a pixel flagged bad in the CCD defect map.
	BadPixel
	// NonlinearPixel marks a pixel in its nonlinear response regime.
	NonlinearPixel
	// PersistentCharge marks persistent charge contamination.
	PersistentCharge
	// Ghost marks an optical ghost.
	Ghost
	// TransientObject marks a transient source.
	TransientObject
	// ExtendedObject marks contamination by a large extended source.
	ExtendedObject
	// ScatteredLight marks scattered light contamination.
	ScatteredLight
	// ChargeInjection marks a charge injection line.
	ChargeInjection
	// NearChargeInjection marks a pixel near a charge injection line.
	NearChargeInjection
	// OffImage marks a pixel outside the detector area. Stamp extraction
	// fills out-of-bounds mask pixels with this flag.
	OffImage
	// NearEdge marks a pixel near the detector edge.
	NearEdge
)

// Compound masks.
const (
	// Bad collects every flag that makes a pixel unusable for shear
	// measurement. InterpolatedPixel and the Suspect bits are excluded.
	Bad = HotPixel | ColdPixel | SaturatedPixel | CosmicRay | SatelliteTrail |
		Bleeding | Onboard | BadPixel | NonlinearPixel | PersistentCharge |
		Ghost | TransientObject | ExtendedObject | ScatteredLight |
		ChargeInjection | OffImage

	// Suspect collects the flags that mark a pixel usable with caution.
	Suspect = NearChargeInjection | NearEdge

	// SuspectOrBad collects both.
	SuspectOrBad = Suspect | Bad
)

// IsMaskedWith reports whether m has any of the given flags set.
func IsMaskedWith(m, flags Mask) bool {
	return m&flags != 0
}

// IsMaskedBad reports whether m has any Bad flag set.
func IsMaskedBad(m Mask) bool {
	return m&Bad != 0
}

// IsMaskedSuspect reports whether m has any Suspect flag set.
func IsMaskedSuspect(m Mask) bool {
	return m&Suspect != 0
}

// IsMaskedSuspectOrBad reports whether m has any Suspect or Bad flag set.
func IsMaskedSuspectOrBad(m Mask) bool {
	return m&SuspectOrBad != 0
}

// AsBool reports whether any flag at all is set.
func AsBool(m Mask) bool {
	return m != 0
}

// flagNames lists every flag in bit order for String.
var flagNames = []struct {
	flag Mask
	name string
}{
	{HotPixel, "HotPixel"},
	{ColdPixel, "ColdPixel"},
	{SaturatedPixel, "SaturatedPixel"},
	{CosmicRay, "CosmicRay"},
	{SatelliteTrail, "SatelliteTrail"},
	{InterpolatedPixel, "InterpolatedPixel"},
	{Bleeding, "Bleeding"},
	{Onboard, "Onboard"},
	{BadPixel, "BadPixel"},
	{NonlinearPixel, "NonlinearPixel"},
	{PersistentCharge, "PersistentCharge"},
	{Ghost, "Ghost"},
	{TransientObject, "TransientObject"},
	{ExtendedObject, "ExtendedObject"},
	{ScatteredLight, "ScatteredLight"},
	{ChargeInjection, "ChargeInjection"},
	{NearChargeInjection, "NearChargeInjection"},
	{OffImage, "OffImage"},
	{NearEdge, "NearEdge"},
}

// String returns the set flags joined by "|", or "None" for a clear mask.
// Unassigned bits are ignored.
func (m Mask) String() string {
	if m == 0 {
		return "None"
	}

	var names []string
	for _, f := range flagNames {
		if m&f.flag != 0 {
			names = append(names, f.name)
		}
	}

	if len(names) == 0 {
		return "None"
	}

	return strings.Join(names, "|")
}
