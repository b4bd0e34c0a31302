package face

import (
	"context"
	"fmt"

	"github.com/visionworks/facegate/internal/analyzer"
	"github.com/visionworks/facegate/internal/analyzer/deepface"
	"github.com/visionworks/facegate/internal/analyzer/mock"
	"github.com/visionworks/facegate/internal/analyzer/rekognition"
	"github.com/visionworks/facegate/internal/config"
)

// AnalyzerType defines supported analyzer backends
type AnalyzerType string

const (
	// AnalyzerTypeDeepFace is the DeepFace backend (local, for dev/test)
	AnalyzerTypeDeepFace AnalyzerType = "deepface"
	// AnalyzerTypeRekognition is the AWS Rekognition backend (cloud, for prod)
	AnalyzerTypeRekognition AnalyzerType = "rekognition"
	// AnalyzerTypeMock is the deterministic in-process backend (tests)
	AnalyzerTypeMock AnalyzerType = "mock"
)

// NewAnalyzer creates a FaceAnalyzer instance based on configuration.
//
// Environment variables:
//   - ANALYZER_TYPE: "deepface", "rekognition" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: via AWS SDK credential chain
func NewAnalyzer(ctx context.Context, cfg *config.Config) (analyzer.FaceAnalyzer, error) {
	switch AnalyzerType(cfg.AnalyzerType) {
	case AnalyzerTypeRekognition:
		a, err := rekognition.New(ctx, rekognition.Config{Region: cfg.AWSRegion})
		if err != nil {
			return nil, fmt.Errorf("create rekognition analyzer: %w", err)
		}
		return a, nil

	case AnalyzerTypeMock:
		return mock.New(), nil

	case AnalyzerTypeDeepFace, "":
		// Default to DeepFace for dev/test environments
		dfConfig := deepface.Config{BaseURL: cfg.DeepFaceURL}
		return deepface.New(dfConfig), nil

	default:
		return nil, fmt.Errorf("unknown analyzer type: %s (supported: %s, %s, %s)",
			cfg.AnalyzerType, AnalyzerTypeDeepFace, AnalyzerTypeRekognition, AnalyzerTypeMock)
	}
}
