package matching

import (
	"makerLink/domain"
)

// Default attribute weights used when no learned or experiment profile
// applies.
const (
	defaultProcessWeight  = 0.45
	defaultMaterialWeight = 0.35
	defaultIndustryWeight = 0.15
	defaultCertsWeight    = 0.05

	// Penalty per critical attribute (process, material) missing entirely
	// from the capability data.
	criticalAttributePenalty = 0.3

	// Returned when nothing overlaps; near-zero keeps the ranking sort
	// stable without pretending there is signal.
	noOverlapScore = 0.02
)

// DefaultWeights returns the baseline attribute weights.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		domain.AttrProcess:        defaultProcessWeight,
		domain.AttrMaterial:       defaultMaterialWeight,
		domain.AttrIndustry:       defaultIndustryWeight,
		domain.AttrCertifications: defaultCertsWeight,
	}
}

// Composer combines per-attribute similarity into one calibrated composite
// score. Pure; safe to call concurrently.
type Composer struct {
	matcher *Matcher
}

func NewComposer(matcher *Matcher) *Composer {
	return &Composer{matcher: matcher}
}

// Compose scores one capability against one order. A nil or empty weights
// map falls back to the defaults; a supplied map overrides per attribute.
// Attributes without data on both sides are excluded and the remaining
// weights renormalized.
func (c *Composer) Compose(
	order domain.OrderRequirement,
	capability domain.ManufacturerCapability,
	weights map[string]float64,
) domain.MatchScore {

	components := make(map[string]float64)
	weightedSum := 0.0
	usedWeight := 0.0
	coverage := 0.0

	if order.ManufacturingProcess != "" && len(capability.ManufacturingProcesses) > 0 {
		s := c.matcher.Match(order.ManufacturingProcess, capability.ManufacturingProcesses)
		w := attributeWeight(weights, domain.AttrProcess, defaultProcessWeight)
		components[domain.AttrProcess] = s
		weightedSum += s * w
		usedWeight += w
		coverage += defaultProcessWeight
	}

	if order.Material != "" && len(capability.Materials) > 0 {
		s := c.matcher.Match(order.Material, capability.Materials)
		w := attributeWeight(weights, domain.AttrMaterial, defaultMaterialWeight)
		components[domain.AttrMaterial] = s
		weightedSum += s * w
		usedWeight += w
		coverage += defaultMaterialWeight
	}

	if order.IndustryCategory != "" && len(capability.IndustriesServed) > 0 {
		s := c.matcher.Match(order.IndustryCategory, capability.IndustriesServed)
		w := attributeWeight(weights, domain.AttrIndustry, defaultIndustryWeight)
		components[domain.AttrIndustry] = s
		weightedSum += s * w
		usedWeight += w
		coverage += defaultIndustryWeight
	}

	if len(order.Certifications) > 0 && len(capability.Certifications) > 0 {
		s := c.certificationScore(order.Certifications, capability.Certifications)
		w := attributeWeight(weights, domain.AttrCertifications, defaultCertsWeight)
		components[domain.AttrCertifications] = s
		weightedSum += s * w
		usedWeight += w
		coverage += defaultCertsWeight
	}

	if usedWeight == 0 {
		return domain.MatchScore{
			OrderID:         order.OrderID,
			ManufacturerID:  capability.ManufacturerID,
			ComponentScores: components,
			CompositeScore:  noOverlapScore,
			Confidence:      0,
		}
	}

	raw := weightedSum / usedWeight

	// One excellent match must beat many mediocre ones, so missing critical
	// data is penalized before the composite is compressed.
	raw -= c.criticalPenalty(order, capability)
	if raw < 0 {
		raw = 0
	}

	composite := compressComposite(raw)

	return domain.MatchScore{
		OrderID:         order.OrderID,
		ManufacturerID:  capability.ManufacturerID,
		ComponentScores: components,
		CompositeScore:  composite,
		Confidence:      coverage,
	}
}

// certificationScore is the mean match over the required certification set.
func (c *Composer) certificationScore(required, available []string) float64 {
	if len(required) == 0 {
		return 0
	}
	sum := 0.0
	for _, cert := range required {
		sum += c.matcher.Match(cert, available)
	}
	return sum / float64(len(required))
}

func (c *Composer) criticalPenalty(order domain.OrderRequirement, capability domain.ManufacturerCapability) float64 {
	penalty := 0.0
	if order.ManufacturingProcess != "" && len(capability.ManufacturingProcesses) == 0 {
		penalty += criticalAttributePenalty
	}
	if order.Material != "" && len(capability.Materials) == 0 {
		penalty += criticalAttributePenalty
	}
	return penalty
}

// compressComposite applies the same discrimination bands as the
// per-attribute clamp to the weighted average. An already excellent
// composite passes through; everything else is held to its band ceiling.
func compressComposite(raw float64) float64 {
	if raw > 1 {
		return 1
	}
	return discriminationClamp(raw)
}

func attributeWeight(weights map[string]float64, key string, fallback float64) float64 {
	if weights == nil {
		return fallback
	}
	if w, ok := weights[key]; ok && w > 0 {
		return w
	}
	return fallback
}
