package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/visionworks/facegate/internal/domain"
	"github.com/visionworks/facegate/internal/enrollment"
)

const (
	maxUploadSize = 10 * 1024 * 1024 // 10MB
)

// GatewayService is the gateway surface the handlers depend on.
type GatewayService interface {
	AnalyzeEmotion(ctx context.Context, upload domain.Upload) (*domain.EmotionResult, error)
	Recognize(ctx context.Context, upload domain.Upload, threshold float64) (*domain.MatchSet, error)
	Register(ctx context.Context, upload domain.Upload, label string) (*enrollment.Record, error)
	DefaultThreshold() float64
}

// ClassifyHandler handles the emotion and identity classification requests
type ClassifyHandler struct {
	service GatewayService
	logger  *slog.Logger
}

func NewClassifyHandler(service GatewayService, logger *slog.Logger) *ClassifyHandler {
	return &ClassifyHandler{
		service: service,
		logger:  logger,
	}
}

// EmotionResponse response for the analyze endpoint
type EmotionResponse struct {
	DominantEmotion string             `json:"dominant_emotion"`
	EmotionScores   map[string]float64 `json:"emotion_scores"`
}

// MatchEntry is one recognized identity in a RecognizeResponse
type MatchEntry struct {
	Identity   string  `json:"identity"`
	Confidence float64 `json:"confidence"`
}

// RecognizeResponse response for the recognize endpoint
type RecognizeResponse struct {
	Results []MatchEntry `json:"results"`
	Message string       `json:"message"`
}

// RegisterResponse response for the register endpoint
type RegisterResponse struct {
	Message string `json:"message"`
}

// Analyze POST /analyze - classify facial emotion
func (h *ClassifyHandler) Analyze(c *fiber.Ctx) error {
	upload, err := extractUpload(c)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	result, err := h.service.AnalyzeEmotion(c.Context(), *upload)
	if err != nil {
		return err
	}

	return c.JSON(EmotionResponse{
		DominantEmotion: result.Dominant,
		EmotionScores:   result.Scores,
	})
}

// Recognize POST /recognize - rank enrolled identities against the probe
func (h *ClassifyHandler) Recognize(c *fiber.Ctx) error {
	upload, err := extractUpload(c)
	if err != nil {
		return fmt.Errorf("recognize: %w", err)
	}

	threshold := h.service.DefaultThreshold()
	if raw := strings.TrimSpace(c.FormValue("threshold")); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.ErrInvalidInput.WithError(fmt.Errorf("threshold %q is not a number", raw))
		}
	}

	result, err := h.service.Recognize(c.Context(), *upload, threshold)
	if err != nil {
		return err
	}

	entries := make([]MatchEntry, 0, len(result.Matches))
	for _, m := range result.Matches {
		entries = append(entries, MatchEntry{
			Identity:   m.Identity,
			Confidence: m.Confidence,
		})
	}

	return c.JSON(RecognizeResponse{
		Results: entries,
		Message: result.Message,
	})
}

// Register POST /register - enroll a labeled reference image
func (h *ClassifyHandler) Register(c *fiber.Ctx) error {
	upload, err := extractUpload(c)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return domain.ErrInvalidInput.WithError(errors.New("name is required"))
	}

	record, err := h.service.Register(c.Context(), *upload, name)
	if err != nil {
		return err
	}

	return c.JSON(RegisterResponse{
		Message: fmt.Sprintf("registered %s as %q", record.Key, record.Label),
	})
}

// extractUpload reads the multipart file field. Type validation beyond
// presence and size belongs to the gateway.
func extractUpload(c *fiber.Ctx) (*domain.Upload, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, domain.ErrInvalidInput.WithError(err)
	}

	if file.Size == 0 || file.Size > maxUploadSize {
		return nil, domain.ErrInvalidInput.WithError(fmt.Errorf("file size %d out of range", file.Size))
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidInput.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidInput.WithError(err)
	}

	return &domain.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
