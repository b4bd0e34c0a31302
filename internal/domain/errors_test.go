package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("message without cause", func(t *testing.T) {
		assert.Equal(t, "Invalid or unsupported image file", ErrInvalidInput.Error())
	})

	t.Run("message with cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := ErrAnalysisFailed.WithError(cause)

		assert.Equal(t, "Image analysis failed: boom", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("WithError does not mutate the sentinel", func(t *testing.T) {
		_ = ErrStorage.WithError(errors.New("disk full"))

		assert.Nil(t, ErrStorage.Err)
	})

	t.Run("taxonomy status codes", func(t *testing.T) {
		assert.Equal(t, 400, ErrInvalidInput.StatusCode)
		assert.Equal(t, 400, ErrNoFaceDetected.StatusCode)
		assert.Equal(t, 500, ErrAnalysisFailed.StatusCode)
		assert.Equal(t, 500, ErrStorage.StatusCode)
	})

	t.Run("errors.As finds AppError through wrapping", func(t *testing.T) {
		wrapped := ErrNoFaceDetected.WithError(errors.New("strict detection"))

		var appErr *AppError
		assert.ErrorAs(t, wrapped, &appErr)
		assert.Equal(t, "NO_FACE_DETECTED", appErr.Code)
	})
}
