package app

import (
	"strings"

	"barrabusiness/pkg/domain"
)

// RegionPolicy selects how a buyer's region text is compared against a
// listing's. Region text is free-form, so the comparison is policy, not
// a fixed rule.
type RegionPolicy string

const (
	// RegionSubstring matches case-insensitively when either region
	// contains the other.
	RegionSubstring RegionPolicy = "substring"
	// RegionExact matches on case-insensitive equality only.
	RegionExact RegionPolicy = "exact"
)

// matches reports whether an approved listing satisfies all of the
// buyer's active criteria. Price only disqualifies when both the cap
// and the asking price are set.
func matches(p domain.Property, i domain.BuyerInterest, policy RegionPolicy) bool {
	if p.Status != domain.PropertyApproved {
		return false
	}
	if p.Type != i.Type {
		return false
	}
	if !regionMatches(p.Region, i.Region, policy) {
		return false
	}
	if p.Bedrooms < i.MinBedrooms {
		return false
	}
	if p.Area < i.MinArea {
		return false
	}
	if i.MaxPrice != nil && p.Price != nil && *p.Price > *i.MaxPrice {
		return false
	}
	return true
}

func regionMatches(propertyRegion, interestRegion string, policy RegionPolicy) bool {
	a := strings.ToLower(strings.TrimSpace(propertyRegion))
	b := strings.ToLower(strings.TrimSpace(interestRegion))
	if a == b {
		return true
	}
	if policy == RegionExact {
		return false
	}
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
