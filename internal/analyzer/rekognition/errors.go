package rekognition

import (
	"errors"

	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates Rekognition rejected the image payload
	ErrInvalidImage = errors.New("rekognition rejected image")
)

const (
	errCodeAccessDenied     = "AccessDeniedException"
	errCodeInvalidParameter = "InvalidParameterException"
	errCodeInvalidImage     = "InvalidImageFormatException"
)

// isNoFaceError reports whether an AWS error means the source image held no
// detectable face. Rekognition signals this through InvalidParameterException
// on CompareFaces.
func isNoFaceError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == errCodeInvalidParameter
	}
	return false
}

// classifyAWSError maps common AWS API error codes onto local sentinels.
func classifyAWSError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeAccessDenied:
			return ErrInvalidCredentials
		case errCodeInvalidImage:
			return ErrInvalidImage
		}
	}
	return err
}
