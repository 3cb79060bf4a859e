package assessment

import "github.com/mindsift-ai/mindsift/internal/catalog"

// Calibration thresholds for the rule-based path.
const (
	// minSymptomRatio is the hard gate: below it, keyword signal is ignored.
	minSymptomRatio = 0.25

	confidenceFloor   = 0.3
	confidenceCeiling = 0.95
)

// Calibrate converts a score vector and the overall yes-ratio into a
// (condition, confidence, severity) triple. It is fully deterministic.
func Calibrate(scores *ScoreVector, yesCount, total int) (string, float64, Severity) {
	ratio := 0.0
	if total > 0 {
		ratio = float64(yesCount) / float64(total)
	}

	// Low affirmative rate overrides any keyword signal.
	if ratio < minSymptomRatio {
		return catalog.NoDisorder, 0.85, SeverityMinimal
	}

	top, topScore := scores.Top()
	if topScore == 0 {
		return catalog.NoDisorder, 0.5, SeverityUncertain
	}

	confidence := 0.5
	if yesCount > 0 {
		confidence = (float64(topScore)/float64(yesCount))*0.9 + confidenceFloor
		if confidence > confidenceCeiling {
			confidence = confidenceCeiling
		}
	}

	return top, confidence, SeverityForRatio(ratio)
}

// SeverityForRatio bands the affirmative-answer ratio into a tier. The
// classifier strategy reuses this independently of its probability vector.
func SeverityForRatio(ratio float64) Severity {
	switch {
	case ratio < minSymptomRatio:
		return SeverityMinimal
	case ratio < 0.4:
		return SeverityMild
	case ratio < 0.6:
		return SeverityModerate
	default:
		return SeveritySignificant
	}
}
