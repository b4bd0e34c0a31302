package rekognition

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/visionworks/facegate/internal/analyzer"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// emotionNames maps AWS emotion labels onto the canonical label set.
// CONFUSED and UNKNOWN have no canonical counterpart and are dropped.
var emotionNames = map[types.EmotionName]string{
	types.EmotionNameAngry:     "angry",
	types.EmotionNameDisgusted: "disgust",
	types.EmotionNameFear:      "fear",
	types.EmotionNameHappy:     "happy",
	types.EmotionNameSad:       "sad",
	types.EmotionNameSurprised: "surprise",
	types.EmotionNameCalm:      "neutral",
}

// Analyzer implements analyzer.FaceAnalyzer using AWS Rekognition.
// Emotion confidences come back on a 0-100 scale and are normalized to 0-1.
type Analyzer struct {
	client *Client
}

var _ analyzer.FaceAnalyzer = (*Analyzer)(nil)

// New creates a Rekognition-backed analyzer
func New(ctx context.Context, cfg Config) (*Analyzer, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Analyzer{client: client}, nil
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// ClassifyEmotion scores the most confident face via the DetectFaces API.
// Lenient mode with zero detected faces falls back to a flat zero
// distribution with a neutral dominant rather than failing.
func (a *Analyzer) ClassifyEmotion(ctx context.Context, image []byte, strict bool) (*analyzer.EmotionResult, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := a.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", classifyAWSError(err))
	}

	if len(output.FaceDetails) == 0 {
		if strict {
			return nil, analyzer.ErrNoFace
		}
		return neutralFallback(), nil
	}

	detail := mostConfidentFace(output.FaceDetails)

	scores := make(map[string]float64, len(analyzer.EmotionLabels))
	for _, label := range analyzer.EmotionLabels {
		scores[label] = 0
	}

	dominant := ""
	best := -1.0
	for _, emotion := range detail.Emotions {
		label, ok := emotionNames[emotion.Type]
		if !ok {
			continue
		}
		score := float64(aws.ToFloat32(emotion.Confidence)) / 100.0
		scores[label] = score
		if score > best {
			best = score
			dominant = label
		}
	}

	if dominant == "" {
		return neutralFallback(), nil
	}

	return &analyzer.EmotionResult{
		Dominant: dominant,
		Scores:   scores,
	}, nil
}

// FindMatches compares the probe file against every reference file with the
// CompareFaces API and ranks by ascending distance, where distance is
// 1 - similarity/100. References without a comparable face are skipped.
func (a *Analyzer) FindMatches(ctx context.Context, probePath string, refs []analyzer.Reference) ([]analyzer.Candidate, error) {
	if len(refs) == 0 {
		return []analyzer.Candidate{}, nil
	}

	probe, err := os.ReadFile(probePath)
	if err != nil {
		return nil, fmt.Errorf("read probe file: %w", err)
	}
	if err := validateImage(probe); err != nil {
		return nil, err
	}

	candidates := make([]analyzer.Candidate, 0, len(refs))
	for _, ref := range refs {
		target, err := os.ReadFile(ref.Path)
		if err != nil {
			continue
		}

		input := &rekognition.CompareFacesInput{
			SourceImage:         &types.Image{Bytes: probe},
			TargetImage:         &types.Image{Bytes: target},
			SimilarityThreshold: aws.Float32(0),
		}

		output, err := a.client.rekognition.CompareFaces(ctx, input)
		if err != nil {
			if isNoFaceError(err) {
				continue
			}
			return nil, fmt.Errorf("compare faces for %q: %w", ref.Label, classifyAWSError(err))
		}

		if len(output.FaceMatches) == 0 {
			continue
		}

		similarity := float64(aws.ToFloat32(output.FaceMatches[0].Similarity))
		candidates = append(candidates, analyzer.Candidate{
			Label:    ref.Label,
			Distance: 1 - similarity/100.0,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	return candidates, nil
}

// DetectFace runs a minimal-attribute DetectFaces pass.
func (a *Analyzer) DetectFace(ctx context.Context, image []byte) (bool, error) {
	if err := validateImage(image); err != nil {
		return false, err
	}

	input := &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeDefault},
	}

	output, err := a.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return false, fmt.Errorf("detect face: %w", classifyAWSError(err))
	}

	return len(output.FaceDetails) > 0, nil
}

func mostConfidentFace(details []types.FaceDetail) types.FaceDetail {
	best := details[0]
	for _, d := range details[1:] {
		if aws.ToFloat32(d.Confidence) > aws.ToFloat32(best.Confidence) {
			best = d
		}
	}
	return best
}

func neutralFallback() *analyzer.EmotionResult {
	scores := make(map[string]float64, len(analyzer.EmotionLabels))
	for _, label := range analyzer.EmotionLabels {
		scores[label] = 0
	}
	return &analyzer.EmotionResult{
		Dominant: "neutral",
		Scores:   scores,
	}
}
