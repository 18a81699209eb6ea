// Package ranking turns the heterogeneous score fields on a source citation
// into one display score and a stable display order. It is pure: no I/O, no
// mutation of its inputs, deterministic for a given input.
package ranking

import (
	"math"
	"sort"

	"github.com/meridianclaims/payerkb/pkg/kb"
)

// Band is the visual severity of a source's relevance.
type Band int

const (
	BandLow    Band = iota // below 60%
	BandMedium             // 60-79%
	BandHigh               // 80% and up
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	default:
		return "low"
	}
}

// Ranked is a source with its display score computed once. The score is
// never recomputed after creation, so re-rendering can never reorder what
// the user already saw.
type Ranked struct {
	kb.Source

	// Score is the normalized display score in [0, 1].
	Score float64

	// Percent is Score as a rounded percentage, 0-100.
	Percent int

	// Band is the confidence band Percent falls into.
	Band Band
}

// DisplayScore derives the single display score for a source: the combined
// score when the backend provides one, else the similarity score, else zero.
// Combined reflects the backend's fused relevance signal and must win
// whenever both are present. The result is clamped to [0, 1]; out-of-range
// or NaN inputs are upstream bugs that must not break rendering.
func DisplayScore(s kb.Source) float64 {
	var raw float64
	switch {
	case s.CombinedScore != nil && !math.IsNaN(*s.CombinedScore):
		raw = *s.CombinedScore
	case s.SimilarityScore != nil && !math.IsNaN(*s.SimilarityScore):
		raw = *s.SimilarityScore
	}
	return clamp01(raw)
}

// Normalize scores and orders sources for display: descending by display
// score, with exact ties keeping the order the backend returned them in.
// The backend's tie-break carries meaning (rule recency) and must not be
// disturbed. The input slice is left untouched.
func Normalize(sources []kb.Source) []Ranked {
	ranked := make([]Ranked, len(sources))
	for i, s := range sources {
		score := DisplayScore(s)
		pct := Percent(score)
		ranked[i] = Ranked{
			Source:  s,
			Score:   score,
			Percent: pct,
			Band:    BandFor(pct),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// Percent converts a display score to its rounded percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// BandFor maps a percentage to its confidence band. The 80/60 thresholds
// are an interface contract shared with the dashboard styling; changing
// them changes what users have learned the colors mean.
func BandFor(percent int) Band {
	switch {
	case percent >= 80:
		return BandHigh
	case percent >= 60:
		return BandMedium
	default:
		return BandLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
