package analyzer

import (
	"context"
	"errors"
)

// ErrNoFace is returned by strict operations when no face is found in the
// image. Implementations wrap it so callers can classify with errors.Is.
var ErrNoFace = errors.New("no face detected")

// EmotionLabels is the canonical label set every implementation reports.
var EmotionLabels = []string{
	"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral",
}

// EmotionResult holds the score distribution for one image. Dominant is a
// key of Scores with the maximal value; ties break by the analyzer's own
// ordering.
type EmotionResult struct {
	Dominant string
	Scores   map[string]float64
}

// Reference is one enrolled image the matcher compares a probe against.
// Both probe and references are addressable files because the underlying
// engines require a readable path.
type Reference struct {
	Label string
	Path  string
}

// Candidate is a ranked identity match, ascending by distance.
type Candidate struct {
	Label    string
	Distance float64
}

// FaceAnalyzer is the external classification capability the gateway
// delegates to. Calls may take hundreds of milliseconds to seconds; callers
// must not hold any shared lock while waiting on them, and must not retry
// failed calls.
type FaceAnalyzer interface {
	// ClassifyEmotion scores the image against EmotionLabels. With strict
	// set, it fails with ErrNoFace when no face is found; lenient mode
	// returns a best-effort result and never fails solely because detection
	// is ambiguous.
	ClassifyEmotion(ctx context.Context, image []byte, strict bool) (*EmotionResult, error)

	// FindMatches ranks references by dissimilarity to the probe file,
	// ascending. An empty reference set yields an empty slice, not an error.
	FindMatches(ctx context.Context, probePath string, refs []Reference) ([]Candidate, error)

	// DetectFace reports whether at least one face is present. Used for
	// enrollment validation only.
	DetectFace(ctx context.Context, image []byte) (bool, error)
}
