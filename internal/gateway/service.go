// Package gateway orchestrates the request pipeline: decode the upload, call
// the analyzer capability, filter and shape the outcome. It owns validation,
// the temporary-probe lifecycle and error translation; the actual
// classification is an opaque external call.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/visionworks/facegate/internal/analyzer"
	"github.com/visionworks/facegate/internal/domain"
	"github.com/visionworks/facegate/internal/enrollment"
	"github.com/visionworks/facegate/internal/imaging"
)

// DefaultThreshold is the recognition distance cutoff used when the caller
// does not supply one.
const DefaultThreshold = 0.6

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// EnrollmentStore is the store surface the gateway needs.
type EnrollmentStore interface {
	Save(label, filename string, data []byte) (*enrollment.Record, error)
	Remove(key string) error
	List() ([]enrollment.Record, error)
}

// Options is the explicit configuration the gateway is constructed with;
// there are no process-wide globals.
type Options struct {
	// TempDir receives probe files for identity matching. Empty means the
	// system temp dir.
	TempDir string
	// StrictDetection makes emotion analysis fail when no face is found
	// instead of returning a best-effort result.
	StrictDetection bool
	// DefaultThreshold overrides DefaultThreshold when > 0.
	DefaultThreshold float64
}

// Service is the classification gateway.
type Service struct {
	analyzer analyzer.FaceAnalyzer
	store    EnrollmentStore
	decoder  *imaging.Decoder
	logger   *slog.Logger
	opts     Options
}

func NewService(a analyzer.FaceAnalyzer, store EnrollmentStore, decoder *imaging.Decoder, logger *slog.Logger, opts Options) *Service {
	if opts.DefaultThreshold <= 0 {
		opts.DefaultThreshold = DefaultThreshold
	}
	return &Service{
		analyzer: a,
		store:    store,
		decoder:  decoder,
		logger:   logger,
		opts:     opts,
	}
}

// DefaultThreshold returns the configured fallback distance cutoff.
func (s *Service) DefaultThreshold() float64 {
	return s.opts.DefaultThreshold
}

// AnalyzeEmotion classifies the uploaded image. Exactly one inference
// attempt is made; transient analyzer failures surface to the caller.
func (s *Service) AnalyzeEmotion(ctx context.Context, upload domain.Upload) (*domain.EmotionResult, error) {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, domain.ErrInvalidInput.WithError(fmt.Errorf("content type %q is not an image", upload.ContentType))
	}

	canonical, err := s.canonicalize(upload.Data)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.ClassifyEmotion(ctx, canonical, s.opts.StrictDetection)
	if err != nil {
		if errors.Is(err, analyzer.ErrNoFace) {
			return nil, domain.ErrNoFaceDetected.WithError(err)
		}
		return nil, domain.ErrAnalysisFailed.WithError(err)
	}

	return &domain.EmotionResult{
		Dominant: result.Dominant,
		Scores:   result.Scores,
	}, nil
}

// Recognize ranks enrolled identities against the uploaded probe and keeps
// those within the distance threshold. An empty store short-circuits to an
// empty result set; it is not an error. The probe temp file is removed on
// every exit path.
func (s *Service) Recognize(ctx context.Context, upload domain.Upload, threshold float64) (*domain.MatchSet, error) {
	if err := validateUploadType(upload); err != nil {
		return nil, err
	}

	canonical, err := s.canonicalize(upload.Data)
	if err != nil {
		return nil, err
	}

	records, err := s.store.List()
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}

	if len(records) == 0 {
		return &domain.MatchSet{
			Matches: []domain.Match{},
			Message: "no identities enrolled yet",
		}, nil
	}

	probePath, cleanup, err := s.writeProbe(canonical)
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}
	defer cleanup()

	refs := make([]analyzer.Reference, 0, len(records))
	for _, rec := range records {
		refs = append(refs, analyzer.Reference{
			Label: rec.Label,
			Path:  rec.Path,
		})
	}

	candidates, err := s.analyzer.FindMatches(ctx, probePath, refs)
	if err != nil {
		return nil, domain.ErrAnalysisFailed.WithError(err)
	}

	domainCandidates := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		domainCandidates[i] = domain.Candidate(c)
	}

	matches := domain.FilterCandidates(domainCandidates, threshold)

	message := fmt.Sprintf("%d match(es) within threshold %.2f", len(matches), threshold)
	if len(matches) == 0 {
		message = fmt.Sprintf("no matches within threshold %.2f", threshold)
	}

	return &domain.MatchSet{
		Matches: matches,
		Message: message,
	}, nil
}

// Register persists the upload as a reference image and then validates face
// presence in strict mode. When validation fails the just-written record is
// deleted before returning: a record is never left enrolled without a
// verifiable face.
func (s *Service) Register(ctx context.Context, upload domain.Upload, label string) (*enrollment.Record, error) {
	if err := validateUploadType(upload); err != nil {
		return nil, err
	}

	if enrollment.Sanitize(label) == "" {
		return nil, domain.ErrInvalidInput.WithError(errors.New("name is required"))
	}

	canonical, err := s.canonicalize(upload.Data)
	if err != nil {
		return nil, err
	}

	record, err := s.store.Save(label, upload.Filename, upload.Data)
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}

	found, err := s.analyzer.DetectFace(ctx, canonical)
	if err != nil || !found {
		s.rollback(record.Key)
		if err != nil {
			if errors.Is(err, analyzer.ErrNoFace) {
				return nil, domain.ErrNoFaceDetected.WithError(err)
			}
			return nil, domain.ErrAnalysisFailed.WithError(err)
		}
		return nil, domain.ErrNoFaceDetected
	}

	return record, nil
}

// canonicalize decodes and re-encodes the upload so the analyzer always
// receives the same pixel format regardless of source codec.
func (s *Service) canonicalize(data []byte) ([]byte, error) {
	img, err := s.decoder.Decode(data)
	if err != nil {
		return nil, domain.ErrInvalidInput.WithError(err)
	}

	canonical, err := img.JPEG()
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	return canonical, nil
}

// writeProbe persists the canonical probe to a uniquely named temp file and
// returns a cleanup that always removes it.
func (s *Service) writeProbe(data []byte) (string, func(), error) {
	dir := s.opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, "probe-"+uuid.New().String()+".jpg")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", nil, fmt.Errorf("write probe file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove probe file",
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
	}

	return path, cleanup, nil
}

// rollback removes a record whose face validation failed. Best-effort: a
// failing removal is logged, not surfaced, because the caller already has a
// more specific error to report.
func (s *Service) rollback(key string) {
	if err := s.store.Remove(key); err != nil {
		s.logger.Error("failed to roll back enrollment record",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

func validateUploadType(upload domain.Upload) error {
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return domain.ErrInvalidInput.WithError(fmt.Errorf("content type %q is not an image", upload.ContentType))
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtensions[ext] {
		return domain.ErrInvalidInput.WithError(fmt.Errorf("unsupported file extension %q", ext))
	}
	return nil
}
