package gateway

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/visionworks/facegate/internal/analyzer"
	"github.com/visionworks/facegate/internal/domain"
	"github.com/visionworks/facegate/internal/enrollment"
	"github.com/visionworks/facegate/internal/imaging"
)

// MockFaceAnalyzer is a mock implementation of analyzer.FaceAnalyzer
type MockFaceAnalyzer struct {
	mock.Mock
}

func (m *MockFaceAnalyzer) ClassifyEmotion(ctx context.Context, img []byte, strict bool) (*analyzer.EmotionResult, error) {
	args := m.Called(ctx, img, strict)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyzer.EmotionResult), args.Error(1)
}

func (m *MockFaceAnalyzer) FindMatches(ctx context.Context, probePath string, refs []analyzer.Reference) ([]analyzer.Candidate, error) {
	args := m.Called(ctx, probePath, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analyzer.Candidate), args.Error(1)
}

func (m *MockFaceAnalyzer) DetectFace(ctx context.Context, img []byte) (bool, error) {
	args := m.Called(ctx, img)
	return args.Bool(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func validUpload(t *testing.T) domain.Upload {
	return domain.Upload{
		Filename:    "face.jpg",
		ContentType: "image/jpeg",
		Data:        makeJPEG(t),
	}
}

type fixture struct {
	service  *Service
	analyzer *MockFaceAnalyzer
	store    *enrollment.Store
	tempDir  string
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	store, err := enrollment.NewStore(t.TempDir())
	require.NoError(t, err)

	if opts.TempDir == "" {
		opts.TempDir = t.TempDir()
	}

	mockAnalyzer := new(MockFaceAnalyzer)
	decoder := imaging.NewDecoder(5*1024*1024, 70)
	service := NewService(mockAnalyzer, store, decoder, testLogger(), opts)

	return &fixture{
		service:  service,
		analyzer: mockAnalyzer,
		store:    store,
		tempDir:  opts.TempDir,
	}
}

func (f *fixture) tempFileCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	return len(entries)
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestService_AnalyzeEmotion(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies with the lenient default", func(t *testing.T) {
		f := newFixture(t, Options{})
		expected := &analyzer.EmotionResult{
			Dominant: "happy",
			Scores:   map[string]float64{"happy": 0.9, "neutral": 0.1},
		}
		f.analyzer.On("ClassifyEmotion", mock.Anything, mock.Anything, false).Return(expected, nil)

		result, err := f.service.AnalyzeEmotion(ctx, validUpload(t))

		require.NoError(t, err)
		assert.Equal(t, "happy", result.Dominant)
		assert.Equal(t, expected.Scores, result.Scores)
		f.analyzer.AssertExpectations(t)
	})

	t.Run("strict configuration is passed through", func(t *testing.T) {
		f := newFixture(t, Options{StrictDetection: true})
		f.analyzer.On("ClassifyEmotion", mock.Anything, mock.Anything, true).
			Return(nil, analyzer.ErrNoFace)

		_, err := f.service.AnalyzeEmotion(ctx, validUpload(t))

		assert.Equal(t, "NO_FACE_DETECTED", appErrCode(t, err))
	})

	t.Run("rejects non-image content type before decoding", func(t *testing.T) {
		f := newFixture(t, Options{})

		_, err := f.service.AnalyzeEmotion(ctx, domain.Upload{
			Filename:    "notes.txt",
			ContentType: "text/plain",
			Data:        []byte("hello"),
		})

		assert.Equal(t, "INVALID_INPUT", appErrCode(t, err))
		f.analyzer.AssertNotCalled(t, "ClassifyEmotion", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("undecodable bytes surface as invalid input", func(t *testing.T) {
		f := newFixture(t, Options{})

		_, err := f.service.AnalyzeEmotion(ctx, domain.Upload{
			Filename:    "fake.jpg",
			ContentType: "image/jpeg",
			Data:        []byte("text file renamed to .jpg"),
		})

		assert.Equal(t, "INVALID_INPUT", appErrCode(t, err))
	})

	t.Run("analyzer failure becomes ANALYSIS_FAILED with the cause attached", func(t *testing.T) {
		f := newFixture(t, Options{})
		cause := errors.New("model backend unreachable")
		f.analyzer.On("ClassifyEmotion", mock.Anything, mock.Anything, false).Return(nil, cause)

		_, err := f.service.AnalyzeEmotion(ctx, validUpload(t))

		assert.Equal(t, "ANALYSIS_FAILED", appErrCode(t, err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("exactly one inference attempt per request", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.analyzer.On("ClassifyEmotion", mock.Anything, mock.Anything, false).
			Return(nil, errors.New("transient"))

		_, _ = f.service.AnalyzeEmotion(ctx, validUpload(t))

		f.analyzer.AssertNumberOfCalls(t, "ClassifyEmotion", 1)
	})
}

func TestService_Recognize(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store short-circuits without calling the analyzer", func(t *testing.T) {
		f := newFixture(t, Options{})

		result, err := f.service.Recognize(ctx, validUpload(t), 0.6)

		require.NoError(t, err)
		assert.Empty(t, result.Matches)
		assert.NotEmpty(t, result.Message)
		f.analyzer.AssertNotCalled(t, "FindMatches", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("filters by threshold and converts distance to confidence", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.store.Save("alice", "a.jpg", []byte("ref-a"))
		require.NoError(t, err)
		_, err = f.store.Save("bob", "b.jpg", []byte("ref-b"))
		require.NoError(t, err)

		f.analyzer.On("FindMatches", mock.Anything, mock.Anything, mock.Anything).
			Return([]analyzer.Candidate{
				{Label: "alice", Distance: 0.2},
				{Label: "bob", Distance: 0.8},
			}, nil)

		result, err := f.service.Recognize(ctx, validUpload(t), 0.6)

		require.NoError(t, err)
		require.Len(t, result.Matches, 1)
		assert.Equal(t, "alice", result.Matches[0].Identity)
		assert.InDelta(t, 0.8, result.Matches[0].Confidence, 1e-9)
	})

	t.Run("passes every enrolled reference to the analyzer", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.store.Save("alice", "a.jpg", []byte("ref-a"))
		require.NoError(t, err)
		_, err = f.store.Save("alice", "a2.jpg", []byte("ref-a2"))
		require.NoError(t, err)

		f.analyzer.On("FindMatches", mock.Anything, mock.Anything, mock.MatchedBy(func(refs []analyzer.Reference) bool {
			return len(refs) == 2
		})).Return([]analyzer.Candidate{}, nil)

		_, err = f.service.Recognize(ctx, validUpload(t), 0.6)

		require.NoError(t, err)
		f.analyzer.AssertExpectations(t)
	})

	t.Run("probe file exists during the analyzer call and is removed after success", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.store.Save("alice", "a.jpg", []byte("ref"))
		require.NoError(t, err)

		f.analyzer.On("FindMatches", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				probePath := args.String(1)
				_, statErr := os.Stat(probePath)
				assert.NoError(t, statErr, "probe must be addressable while the analyzer runs")
			}).
			Return([]analyzer.Candidate{}, nil)

		_, err = f.service.Recognize(ctx, validUpload(t), 0.6)

		require.NoError(t, err)
		assert.Zero(t, f.tempFileCount(t), "probe temp file must be removed")
	})

	t.Run("probe file is removed even when the analyzer fails", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.store.Save("alice", "a.jpg", []byte("ref"))
		require.NoError(t, err)

		f.analyzer.On("FindMatches", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("engine crashed"))

		_, err = f.service.Recognize(ctx, validUpload(t), 0.6)

		assert.Equal(t, "ANALYSIS_FAILED", appErrCode(t, err))
		assert.Zero(t, f.tempFileCount(t), "probe temp file must be removed on failure too")
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		f := newFixture(t, Options{})

		_, err := f.service.Recognize(ctx, domain.Upload{
			Filename:    "clip.gif",
			ContentType: "image/gif",
			Data:        makeJPEG(t),
		}, 0.6)

		assert.Equal(t, "INVALID_INPUT", appErrCode(t, err))
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the record when a face is present", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.analyzer.On("DetectFace", mock.Anything, mock.Anything).Return(true, nil)

		record, err := f.service.Register(ctx, validUpload(t), "alice")

		require.NoError(t, err)
		assert.Equal(t, "alice", record.Label)

		count, err := f.store.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rolls back the record when no face is found", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.analyzer.On("DetectFace", mock.Anything, mock.Anything).Return(false, nil)

		_, err := f.service.Register(ctx, validUpload(t), "alice")

		assert.Equal(t, "NO_FACE_DETECTED", appErrCode(t, err))

		count, countErr := f.store.Count()
		require.NoError(t, countErr)
		assert.Zero(t, count, "no orphaned record may remain")
	})

	t.Run("rolls back the record when detection errors", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.analyzer.On("DetectFace", mock.Anything, mock.Anything).
			Return(false, errors.New("backend down"))

		_, err := f.service.Register(ctx, validUpload(t), "alice")

		assert.Equal(t, "ANALYSIS_FAILED", appErrCode(t, err))

		count, countErr := f.store.Count()
		require.NoError(t, countErr)
		assert.Zero(t, count)
	})

	t.Run("rejects a label that sanitizes to nothing", func(t *testing.T) {
		f := newFixture(t, Options{})

		_, err := f.service.Register(ctx, validUpload(t), "///")

		assert.Equal(t, "INVALID_INPUT", appErrCode(t, err))
		f.analyzer.AssertNotCalled(t, "DetectFace", mock.Anything, mock.Anything)
	})

	t.Run("rejects non-image uploads", func(t *testing.T) {
		f := newFixture(t, Options{})

		_, err := f.service.Register(ctx, domain.Upload{
			Filename:    "resume.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.4"),
		}, "alice")

		assert.Equal(t, "INVALID_INPUT", appErrCode(t, err))
	})
}

func TestService_DefaultThreshold(t *testing.T) {
	t.Run("falls back to the package default", func(t *testing.T) {
		f := newFixture(t, Options{})
		assert.Equal(t, DefaultThreshold, f.service.DefaultThreshold())
	})

	t.Run("honors a configured override", func(t *testing.T) {
		f := newFixture(t, Options{DefaultThreshold: 0.4})
		assert.Equal(t, 0.4, f.service.DefaultThreshold())
	})
}
