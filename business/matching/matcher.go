package matching

import (
	"strings"
)

// Matcher scores how well a required attribute value is covered by a
// manufacturer's declared values. Pure; deterministic for a given
// TableVersion.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match returns the best calibrated similarity in [0,1] between required and
// any of the available values. An exact value scores 1.0; everything else
// runs through the containment, word-set and hierarchy rules and the final
// discrimination clamp.
func (m *Matcher) Match(required string, available []string) float64 {
	req := normalizeTerm(required)
	if req == "" || len(available) == 0 {
		return 0
	}

	best := 0.0
	for _, av := range available {
		score := m.matchOne(req, normalizeTerm(av))
		if score > best {
			best = score
		}
		if best >= 1.0 {
			break
		}
	}
	return best
}

func (m *Matcher) matchOne(required, available string) float64 {
	if available == "" {
		return 0
	}
	if required == available {
		return 1.0
	}

	score := containmentScore(required, available)
	if s := jaccardScore(required, available); s > score {
		score = s
	}
	if s := hierarchyScore(required, available); s > score {
		score = s
	}

	return discriminationClamp(score)
}

// containmentScore maps substring containment to a banded score from the
// length overlap ratio of the two strings.
func containmentScore(a, b string) float64 {
	if !strings.Contains(a, b) && !strings.Contains(b, a) {
		return 0
	}

	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 {
		return 0
	}

	return bandScore(containmentBands, float64(shorter)/float64(longer))
}

// jaccardScore maps word-set Jaccard similarity to a banded score.
func jaccardScore(a, b string) float64 {
	wordsA := fieldSet(a)
	wordsB := fieldSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0
	}

	return bandScore(jaccardBands, float64(intersection)/float64(union))
}

func fieldSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
