package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"sort"

	"github.com/visionworks/facegate/internal/analyzer"
)

// Analyzer implements analyzer.FaceAnalyzer against a DeepFace-compatible
// HTTP service. Emotion scores come back as raw percentages; they are
// surfaced as-is because the service does not normalize them.
type Analyzer struct {
	client *Client
}

var _ analyzer.FaceAnalyzer = (*Analyzer)(nil)

// New creates a DeepFace-backed analyzer
func New(config Config) *Analyzer {
	return &Analyzer{
		client: NewClient(config),
	}
}

// ClassifyEmotion scores the image via POST /analyze with the emotion
// action. Strict mode maps the service's "face could not be detected" 400
// reply to analyzer.ErrNoFace; lenient mode lets DeepFace score the whole
// frame.
func (a *Analyzer) ClassifyEmotion(ctx context.Context, image []byte, strict bool) (*analyzer.EmotionResult, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := a.client.Analyze(ctx, imageBase64, []string{"emotion"}, strict)
	if err != nil {
		if strict && IsClientError(err) {
			return nil, fmt.Errorf("%w: %v", analyzer.ErrNoFace, err)
		}
		return nil, fmt.Errorf("classify emotion: %w", err)
	}

	if len(resp.Results) == 0 {
		if strict {
			return nil, analyzer.ErrNoFace
		}
		return nil, fmt.Errorf("classify emotion: %w", ErrNoFaceInResponse)
	}

	// Best-effort single result: the first (most prominent) face.
	result := resp.Results[0]

	dominant := result.DominantEmotion
	if dominant == "" {
		dominant = dominantOf(result.Emotion)
	}

	return &analyzer.EmotionResult{
		Dominant: dominant,
		Scores:   result.Emotion,
	}, nil
}

// FindMatches embeds the probe and every reference via POST /represent and
// ranks references by cosine distance, ascending. References whose image no
// longer embeds (file gone, no face) are skipped rather than failing the
// whole search.
func (a *Analyzer) FindMatches(ctx context.Context, probePath string, refs []analyzer.Reference) ([]analyzer.Candidate, error) {
	if len(refs) == 0 {
		return []analyzer.Candidate{}, nil
	}

	probeEmbedding, err := a.embedFile(ctx, probePath)
	if err != nil {
		return nil, fmt.Errorf("embed probe: %w", err)
	}

	candidates := make([]analyzer.Candidate, 0, len(refs))
	for _, ref := range refs {
		refEmbedding, err := a.embedFile(ctx, ref.Path)
		if err != nil {
			continue
		}

		candidates = append(candidates, analyzer.Candidate{
			Label:    ref.Label,
			Distance: CosineDistance(probeEmbedding, refEmbedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	return candidates, nil
}

// DetectFace runs POST /analyze with no actions, which is a pure detection
// pass.
func (a *Analyzer) DetectFace(ctx context.Context, image []byte) (bool, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := a.client.Analyze(ctx, imageBase64, []string{}, true)
	if err != nil {
		if IsClientError(err) {
			return false, nil
		}
		return false, fmt.Errorf("detect face: %w", err)
	}

	return len(resp.Results) > 0, nil
}

func (a *Analyzer) embedFile(ctx context.Context, path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}

	resp, err := a.client.Represent(ctx, base64.StdEncoding.EncodeToString(data), true)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, ErrNoFaceInResponse
	}

	return resp.Results[0].Embedding, nil
}

func dominantOf(scores map[string]float64) string {
	var dominant string
	best := 0.0
	for _, label := range analyzer.EmotionLabels {
		score, ok := scores[label]
		if !ok {
			continue
		}
		if dominant == "" || score > best {
			dominant = label
			best = score
		}
	}
	return dominant
}
