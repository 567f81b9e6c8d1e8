package types

import (
	"fmt"
	"strings"
)

// Region is an AWS region code in canonical stored form, with underscores
// instead of hyphens (us_east_1). The wire form (us-east-1) is only ever
// produced at the SDK boundary via Wire.
type Region string

// knownRegions is the set of regions an account may be configured with.
var knownRegions = map[Region]bool{
	"us_east_1":      true,
	"us_east_2":      true,
	"us_west_1":      true,
	"us_west_2":      true,
	"af_south_1":     true,
	"ap_east_1":      true,
	"ap_south_1":     true,
	"ap_northeast_1": true,
	"ap_northeast_2": true,
	"ap_northeast_3": true,
	"ap_southeast_1": true,
	"ap_southeast_2": true,
	"ap_southeast_3": true,
	"ca_central_1":   true,
	"eu_central_1":   true,
	"eu_west_1":      true,
	"eu_west_2":      true,
	"eu_west_3":      true,
	"eu_north_1":     true,
	"eu_south_1":     true,
	"me_south_1":     true,
	"sa_east_1":      true,
}

// ParseRegion accepts a region code in either stored or wire form and
// returns the canonical stored form.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ReplaceAll(s, "-", "_"))
	if !knownRegions[r] {
		return "", fmt.Errorf("unknown region %q", s)
	}
	return r, nil
}

// Wire returns the hyphenated form the provider expects.
func (r Region) Wire() string {
	return strings.ReplaceAll(string(r), "_", "-")
}

func (r Region) String() string {
	return string(r)
}

// Valid reports whether the region is in the known set.
func (r Region) Valid() bool {
	return knownRegions[r]
}
