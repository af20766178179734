package learning

import (
	"makerLink/domain"
)

// AssignSegment buckets a customer by preference flags. Predicates are
// evaluated in a fixed order and the first match wins.
func AssignSegment(cctx domain.CustomerContext) domain.CustomerSegment {
	switch {
	case cctx.PricePriority:
		return domain.SegmentPriceSensitive
	case cctx.QualityPriority:
		return domain.SegmentQualityFocused
	case cctx.RushOrders:
		return domain.SegmentSpeedPriority
	case cctx.PrefersLocal:
		return domain.SegmentLocalPreference
	case cctx.PremiumBuyer:
		return domain.SegmentPremiumBuyer
	default:
		return domain.SegmentBalanced
	}
}
