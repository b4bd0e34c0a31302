package mock

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/visionworks/facegate/internal/analyzer"
)

// minImageBytes is the heuristic floor below which the mock reports no face.
const minImageBytes = 1000

// Analyzer is a deterministic analyzer.FaceAnalyzer for tests and
// development. All results derive from SHA-256 of the input, so identical
// images always classify identically.
type Analyzer struct{}

var _ analyzer.FaceAnalyzer = (*Analyzer)(nil)

func New() *Analyzer {
	return &Analyzer{}
}

// ClassifyEmotion derives a normalized score distribution from the image
// hash. The distribution always sums to 1.
func (a *Analyzer) ClassifyEmotion(ctx context.Context, image []byte, strict bool) (*analyzer.EmotionResult, error) {
	if strict && len(image) < minImageBytes {
		return nil, analyzer.ErrNoFace
	}

	hash := sha256.Sum256(image)

	scores := make(map[string]float64, len(analyzer.EmotionLabels))
	total := 0.0
	for i, label := range analyzer.EmotionLabels {
		// +1 keeps every score strictly positive so normalization is stable.
		raw := float64(hash[i]) + 1
		scores[label] = raw
		total += raw
	}

	dominant := ""
	best := 0.0
	for _, label := range analyzer.EmotionLabels {
		scores[label] /= total
		if scores[label] > best {
			best = scores[label]
			dominant = label
		}
	}

	return &analyzer.EmotionResult{
		Dominant: dominant,
		Scores:   scores,
	}, nil
}

// FindMatches derives a stable pseudo-distance in [0, 1] from the probe and
// reference hashes: identical bytes yield distance 0.
func (a *Analyzer) FindMatches(ctx context.Context, probePath string, refs []analyzer.Reference) ([]analyzer.Candidate, error) {
	if len(refs) == 0 {
		return []analyzer.Candidate{}, nil
	}

	probe, err := os.ReadFile(probePath)
	if err != nil {
		return nil, fmt.Errorf("read probe file: %w", err)
	}
	probeHash := sha256.Sum256(probe)

	candidates := make([]analyzer.Candidate, 0, len(refs))
	for _, ref := range refs {
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			continue
		}

		candidates = append(candidates, analyzer.Candidate{
			Label:    ref.Label,
			Distance: hashDistance(probeHash, sha256.Sum256(data)),
		})
	}

	// Insertion sort keeps the mock dependency-free and the order stable.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].Distance < candidates[j-1].Distance; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	return candidates, nil
}

// DetectFace reports a face for any payload of plausible image size.
func (a *Analyzer) DetectFace(ctx context.Context, image []byte) (bool, error) {
	return len(image) >= minImageBytes, nil
}

// hashDistance is the fraction of differing hash bytes: 0 for identical
// input, approaching 1 for unrelated input.
func hashDistance(a, b [32]byte) float64 {
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	return float64(diff) / float64(len(a))
}
