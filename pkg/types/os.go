package types

import "strings"

// SplitOSNameVariant splits "name+variant" at the first "+".
// A name without a variant yields an empty variant.
func SplitOSNameVariant(name string) (string, string) {
	base, variant, _ := strings.Cut(name, "+")
	return base, variant
}

// OSName returns the base OS name of an OS+variant string
func OSName(name string) string {
	base, _ := SplitOSNameVariant(name)
	return base
}

// OSVariant returns the variant of an OS+variant string, or ""
func OSVariant(name string) string {
	_, variant := SplitOSNameVariant(name)
	return variant
}
