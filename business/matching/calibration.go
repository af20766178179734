package matching

// Calibration data for the matcher and composer. These constants are tuning
// data, not business rules; change them here, not in the rule code.

// TableVersion identifies the shipped calibration set. Scores are
// deterministic for a given version.
const TableVersion = "2024.2"

// scoreBand maps a raw similarity threshold to the calibrated score for that
// band. Bands are evaluated in order; first threshold met wins.
type scoreBand struct {
	Min   float64
	Score float64
}

// Substring containment: overlap ratio (shorter/longer) to score.
var containmentBands = []scoreBand{
	{Min: 0.95, Score: 0.85},
	{Min: 0.85, Score: 0.75},
	{Min: 0.70, Score: 0.60},
	{Min: 0.50, Score: 0.45},
	{Min: 0.00, Score: 0.25},
}

// Word-set Jaccard similarity to score.
var jaccardBands = []scoreBand{
	{Min: 0.90, Score: 0.75},
	{Min: 0.75, Score: 0.60},
	{Min: 0.60, Score: 0.45},
	{Min: 0.40, Score: 0.30},
	{Min: 0.20, Score: 0.15},
}

// Hierarchy tier scores.
const (
	tierExactScore     = 1.0
	tierVeryCloseScore = 0.8
	tierCloseScore     = 0.6
	tierModerateScore  = 0.4
	tierRelatedScore   = 0.25

	// Discount applied when required and available terms sit in the same
	// category but different tiers.
	crossTierDiscount = 0.7
)

// discriminationClamp caps a raw score by band so qualitatively different
// match qualities stay numerically well separated. Raw scores above 0.85
// pass through untouched.
func discriminationClamp(raw float64) float64 {
	switch {
	case raw > 0.85:
		return raw
	case raw > 0.70:
		return min(raw, 0.75)
	case raw > 0.50:
		return min(raw, 0.55)
	case raw > 0.30:
		return min(raw, 0.35)
	default:
		return min(raw, 0.15)
	}
}

func bandScore(bands []scoreBand, value float64) float64 {
	for _, b := range bands {
		if value >= b.Min {
			return b.Score
		}
	}
	return 0
}
