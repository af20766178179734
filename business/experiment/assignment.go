package experiment

import (
	"hash/fnv"
	"sort"

	"makerLink/domain"
)

// AssignVariant buckets a session into one of an experiment's variants,
// honoring the allocation fractions. FNV-1a over (experiment, session) keeps
// the assignment sticky: the same session always lands in the same arm.
func AssignVariant(experimentID, sessionID string, allocation map[string]float64) string {
	if len(allocation) == 0 {
		return domain.ControlVariant
	}

	variants := make([]string, 0, len(allocation))
	for v := range allocation {
		variants = append(variants, v)
	}
	sort.Strings(variants)

	u := hashToUnit(experimentID + ":" + sessionID)

	cum := 0.0
	for _, v := range variants {
		cum += allocation[v]
		if u < cum {
			return v
		}
	}

	// rounding residue lands on the last variant
	return variants[len(variants)-1]
}

// hashToUnit deterministically hashes a string into [0, 1).
func hashToUnit(s string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum32()) / float64(1<<32)
}
