package matching

// Technical-term hierarchy. Each category anchors one family of
// manufacturing processes or materials; a term's tier says how close it sits
// to the family anchor. Two terms in the same category score by tier (same
// tier keeps the tier score, different tiers take the lower score with the
// cross-tier discount). Terms from different categories contribute nothing
// here and fall through to the string rules.

type hierarchyTier int

const (
	tierExact hierarchyTier = iota
	tierVeryClose
	tierClose
	tierModerate
	tierRelated
)

var tierScores = map[hierarchyTier]float64{
	tierExact:     tierExactScore,
	tierVeryClose: tierVeryCloseScore,
	tierClose:     tierCloseScore,
	tierModerate:  tierModerateScore,
	tierRelated:   tierRelatedScore,
}

type hierarchyEntry struct {
	category string
	tier     hierarchyTier
}

// hierarchyTable is keyed by category; tier lists hold normalized terms.
var hierarchyTable = map[string]map[hierarchyTier][]string{
	"machining": {
		tierExact:     {"cnc machining"},
		tierVeryClose: {"cnc manufacturing", "cnc milling", "cnc turning", "precision cnc"},
		tierClose:     {"precision machining", "swiss machining", "multi-axis machining"},
		tierModerate:  {"milling", "turning", "drilling", "boring"},
		tierRelated:   {"grinding", "edm", "honing"},
	},
	"molding": {
		tierExact:     {"injection molding"},
		tierVeryClose: {"insert molding", "overmolding", "micro molding"},
		tierClose:     {"compression molding", "blow molding", "transfer molding"},
		tierModerate:  {"thermoforming", "rotational molding"},
		tierRelated:   {"vacuum forming"},
	},
	"sheet_metal": {
		tierExact:     {"sheet metal fabrication"},
		tierVeryClose: {"metal stamping", "laser cutting", "waterjet cutting"},
		tierClose:     {"bending", "punching", "shearing"},
		tierModerate:  {"welding", "riveting"},
		tierRelated:   {"tube bending", "roll forming"},
	},
	"additive": {
		tierExact:     {"3d printing"},
		tierVeryClose: {"additive manufacturing", "sls", "sla", "fdm", "dmls"},
		tierClose:     {"metal 3d printing", "multi jet fusion"},
		tierModerate:  {"rapid prototyping"},
		tierRelated:   {"vacuum casting"},
	},
	"casting": {
		tierExact:     {"die casting"},
		tierVeryClose: {"investment casting", "sand casting"},
		tierClose:     {"permanent mold casting", "centrifugal casting"},
		tierModerate:  {"forging"},
		tierRelated:   {"extrusion"},
	},
	"aluminum": {
		tierExact:     {"aluminum"},
		tierVeryClose: {"aluminum 6061", "aluminum 7075", "aluminum 5052", "6061-t6"},
		tierClose:     {"aluminum alloy", "cast aluminum"},
		tierModerate:  {"magnesium"},
		tierRelated:   {"zinc"},
	},
	"steel": {
		tierExact:     {"steel"},
		tierVeryClose: {"stainless steel", "carbon steel", "alloy steel", "304 stainless steel", "316 stainless steel"},
		tierClose:     {"tool steel", "spring steel", "galvanized steel"},
		tierModerate:  {"iron", "cast iron"},
		tierRelated:   {"inconel"},
	},
	"titanium": {
		tierExact:     {"titanium"},
		tierVeryClose: {"titanium grade 5", "ti-6al-4v", "titanium grade 2"},
		tierClose:     {"titanium alloy"},
		tierModerate:  {"nickel alloy"},
		tierRelated:   {"cobalt chrome"},
	},
	"plastic": {
		tierExact:     {"plastic"},
		tierVeryClose: {"abs", "nylon", "polycarbonate", "polypropylene", "peek"},
		tierClose:     {"acrylic", "delrin", "acetal", "hdpe"},
		tierModerate:  {"rubber", "silicone", "tpu"},
		tierRelated:   {"composite", "carbon fiber"},
	},
}

// hierarchyIndex is the normalized term -> (category, tier) lookup built
// once from the table.
var hierarchyIndex = buildHierarchyIndex()

func buildHierarchyIndex() map[string]hierarchyEntry {
	idx := make(map[string]hierarchyEntry)
	for cat, tiers := range hierarchyTable {
		for tier, terms := range tiers {
			for _, term := range terms {
				idx[term] = hierarchyEntry{category: cat, tier: tier}
			}
		}
	}
	return idx
}

// hierarchyScore scores two normalized terms through the table. Returns 0
// when either term is unknown or the categories differ.
func hierarchyScore(required, available string) float64 {
	reqEntry, ok := hierarchyIndex[required]
	if !ok {
		return 0
	}
	avEntry, ok := hierarchyIndex[available]
	if !ok || reqEntry.category != avEntry.category {
		return 0
	}

	if reqEntry.tier == avEntry.tier {
		return tierScores[reqEntry.tier]
	}

	lower := reqEntry.tier
	if avEntry.tier > lower {
		lower = avEntry.tier
	}
	return tierScores[lower] * crossTierDiscount
}
