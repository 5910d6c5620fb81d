// Package matching provides the string similarity heuristic used to compare CRM field values.
package matching

import (
	"math"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/josegonzalez/dupcheck/pkg/internal/normalization"
)

const (
	// ExactScore is returned when both values are equal after normalization.
	ExactScore = 100

	// containmentScale caps the score of a substring match.
	containmentScale = 90

	// positionalScale caps the score of a positional character overlap.
	positionalScale = 80
)

// jaroWinkler is a reusable Jaro-Winkler metric instance.
var jaroWinkler = metrics.NewJaroWinkler()

// NormalizeFunc normalizes a raw field value before comparison.
type NormalizeFunc func(string) string

// Scorer compares field values. The zero value is not usable; use NewScorer.
type Scorer struct {
	normalize NormalizeFunc
}

// NewScorer creates a Scorer. A nil normalize uses normalization.Normalize.
func NewScorer(normalize NormalizeFunc) *Scorer {
	if normalize == nil {
		normalize = normalization.Normalize
	}
	return &Scorer{normalize: normalize}
}

// defaultScorer backs the package-level helpers.
var defaultScorer = NewScorer(nil)

// Normalize normalizes a value with the scorer's normalizer.
func (s *Scorer) Normalize(v string) string {
	return s.normalize(v)
}

// Similarity returns a score in [0, 100] for two raw values.
// Tiers, first applicable wins:
//   - equal and non-empty after normalization: 100
//   - either empty after normalization: 0
//   - one contains the other: round(len(shorter)/len(longer) * 90)
//   - otherwise: round(same-index matching characters / len(longer) * 80)
func (s *Scorer) Similarity(a, b string) int {
	return Compare(s.normalize(a), s.normalize(b))
}

// WebDomain extracts a comparable website domain using the scorer's normalizer.
func (s *Scorer) WebDomain(rawURL string) string {
	return normalization.StripWebPrefixes(s.normalize(rawURL))
}

// Compare scores two already-normalized strings. See Scorer.Similarity.
func Compare(a, b string) int {
	if a == b && a != "" {
		return ExactScore
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if strings.Contains(longer, shorter) {
		return scale(len(shorter), len(longer), containmentScale)
	}

	matches := 0
	for i := 0; i < len(shorter); i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return scale(matches, len(longer), positionalScale)
}

func scale(num, den, ceiling int) int {
	return int(math.Round(float64(num) / float64(den) * float64(ceiling)))
}

// Similarity scores two raw values with the default normalizer.
func Similarity(a, b string) int {
	return defaultScorer.Similarity(a, b)
}

// ReferenceSimilarity returns the Jaro-Winkler similarity of the normalized
// values on the same 0-100 scale. It is a diagnostic aid for reviewing rule
// calibration and never contributes to a duplicate score.
func (s *Scorer) ReferenceSimilarity(a, b string) int {
	na, nb := s.normalize(a), s.normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	return int(math.Round(strutil.Similarity(na, nb, jaroWinkler) * 100))
}
