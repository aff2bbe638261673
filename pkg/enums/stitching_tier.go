package enums

import "fmt"

// StitchingTier is the labor quality level a garment is charged at.
type StitchingTier string

const (
	StitchingTierBasic   StitchingTier = "basic"
	StitchingTierPremium StitchingTier = "premium"
	StitchingTierLuxury  StitchingTier = "luxury"
)

var validStitchingTiers = []StitchingTier{
	StitchingTierBasic,
	StitchingTierPremium,
	StitchingTierLuxury,
}

// String implements fmt.Stringer.
func (s StitchingTier) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StitchingTier.
func (s StitchingTier) IsValid() bool {
	for _, candidate := range validStitchingTiers {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStitchingTier converts raw input into a StitchingTier.
func ParseStitchingTier(value string) (StitchingTier, error) {
	for _, candidate := range validStitchingTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stitching tier %q", value)
}
