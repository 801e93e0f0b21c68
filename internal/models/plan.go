package models

// PlanTier is the ordered subscription tier a tenant is on.
type PlanTier string

const (
	PlanBasic      PlanTier = "basic"
	PlanPro        PlanTier = "pro"
	PlanEnterprise PlanTier = "enterprise"
)

var planRank = map[PlanTier]int{
	PlanBasic:      0,
	PlanPro:        1,
	PlanEnterprise: 2,
}

// Valid reports whether p is a known plan tier.
func (p PlanTier) Valid() bool {
	_, ok := planRank[p]
	return ok
}

// AtLeast reports whether p sits at or above min in the tier order
// basic < pro < enterprise. Unknown tiers never satisfy any minimum.
func (p PlanTier) AtLeast(min PlanTier) bool {
	rank, ok := planRank[p]
	if !ok {
		return false
	}
	minRank, ok := planRank[min]
	if !ok {
		return false
	}
	return rank >= minRank
}
