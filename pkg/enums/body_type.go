package enums

import "fmt"

// BodyType is the garment sizing category that adjusts fabric meters needed.
type BodyType string

const (
	BodyTypeSlim    BodyType = "slim"
	BodyTypeRegular BodyType = "regular"
	BodyTypeLarge   BodyType = "large"
	BodyTypeXL      BodyType = "xl"
)

var validBodyTypes = []BodyType{
	BodyTypeSlim,
	BodyTypeRegular,
	BodyTypeLarge,
	BodyTypeXL,
}

// String implements fmt.Stringer.
func (b BodyType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BodyType.
func (b BodyType) IsValid() bool {
	for _, candidate := range validBodyTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBodyType converts raw input into a BodyType.
func ParseBodyType(value string) (BodyType, error) {
	for _, candidate := range validBodyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid body type %q", value)
}
