package detector

import (
	"github.com/example/lockscan/internal/entropy"
	"github.com/example/lockscan/internal/inspector"
)

const (
	// DefaultDecisionThreshold is the suspicion level at or above which an
	// entropy-only classification reports protection.
	DefaultDecisionThreshold = 0.5

	// definiteConfidence is the inspector confidence at or above which a
	// definite verdict is adopted verbatim and entropy is skipped.
	definiteConfidence = 0.9

	// Entropy alone never yields full certainty; its confidence is scaled
	// into this band.
	entropyConfFloor = 0.3
	entropyConfCeil  = 0.85

	// disagreementCap limits confidence when inspector and entropy point
	// in opposite directions.
	disagreementCap = 0.6
)

// aggregate merges whichever evidence exists into the final classification.
// Precedence, in order: a definite high-confidence inspector verdict wins
// outright; an inconclusive, errored, or absent verdict defers to entropy;
// a definite low-confidence verdict blends with entropy.
func aggregate(v *inspector.Verdict, ev *entropy.Evidence, threshold float64) (protected bool, confidence float64, encrypted bool) {
	suspicious := ev != nil && ev.Suspicion >= threshold

	switch {
	case v != nil && v.Definite(definiteConfidence):
		protected = v.Outcome == inspector.Protected
		confidence = v.Confidence

	case v == nil || !definite(v):
		// Entropy-only path. Callers guarantee at least one evidence
		// source; ev is non-nil here.
		protected = suspicious
		confidence = entropyConfFloor + ev.Suspicion*(entropyConfCeil-entropyConfFloor)

	default:
		// Definite verdict below the adoption threshold: blend.
		protected = v.Outcome == inspector.Protected
		if ev == nil {
			confidence = v.Confidence
		} else if protected == suspicious {
			confidence = maxFloat(v.Confidence, ev.Suspicion)
		} else {
			confidence = minFloat(v.Confidence, disagreementCap)
		}
	}

	encrypted = protected || suspicious
	return protected, confidence, encrypted
}

// definite reports whether the verdict asserts a boolean with any usable
// confidence. Zero-confidence verdicts carry no information and defer to
// entropy like an absent inspector.
func definite(v *inspector.Verdict) bool {
	return (v.Outcome == inspector.Protected || v.Outcome == inspector.NotProtected) && v.Confidence > 0
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
