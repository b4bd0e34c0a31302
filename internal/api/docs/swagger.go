package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// EmotionResponse represents the response for emotion analysis
type EmotionResponse struct {
	DominantEmotion string             `json:"dominant_emotion" example:"happy"`
	EmotionScores   map[string]float64 `json:"emotion_scores"`
}

// MatchEntry represents one recognized identity
type MatchEntry struct {
	Identity   string  `json:"identity" example:"alice"`
	Confidence float64 `json:"confidence" example:"0.82"`
}

// RecognizeResponse represents the response for identity recognition
type RecognizeResponse struct {
	Results []MatchEntry `json:"results"`
	Message string       `json:"message" example:"1 match(es) within threshold 0.60"`
}

// RegisterResponse represents the response for a successful enrollment
type RegisterResponse struct {
	Message string `json:"message" example:"registered alice_photo.jpg as \"alice\""`
}

// InfoResponse represents the service banner
type InfoResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message" example:"Facegate image classification API is running"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"INVALID_INPUT"`
	Message string `json:"message" example:"Invalid or unsupported image file"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facegate API",
		Version:     "v0.1.0",
		Description: "Image classification gateway: facial emotion analysis and face identity matching around a pluggable analyzer capability",
		Host:        "localhost:8000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// GET / - Service banner
		endpoint.New(
			endpoint.GET,
			"/",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Service banner"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(InfoResponse{}, "200", "Service is running"),
			}),
		),

		// POST /analyze - Emotion classification
		endpoint.New(
			endpoint.POST,
			"/analyze",
			endpoint.WithTags("Classification"),
			endpoint.WithSummary("Classify facial emotion"),
			endpoint.WithDescription("Decodes the uploaded image and returns a distribution over the seven canonical emotion labels plus the dominant one. Lenient by default: ambiguous detection never fails the request."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmotionResponse{}, "200", "Emotion classified successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_INPUT", Message: "Invalid or unsupported image file"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "400", "Bad Request (strict mode only)"),
				response.New(ErrorResponse{Code: "ANALYSIS_FAILED", Message: "Image analysis failed"}, "500", "Internal Server Error"),
			}),
		),

		// POST /recognize - Identity recognition
		endpoint.New(
			endpoint.POST,
			"/recognize",
			endpoint.WithTags("Classification"),
			endpoint.WithSummary("Recognize enrolled identities"),
			endpoint.WithDescription("Ranks enrolled reference images against the uploaded probe and returns those within the distance threshold, as confidence = 1 - distance. An empty enrollment store yields an empty result set, not an error."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("threshold", parameter.Form, parameter.WithDescription("Maximum match distance (default 0.6)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecognizeResponse{}, "200", "Recognition completed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_INPUT", Message: "Invalid or unsupported image file"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "ANALYSIS_FAILED", Message: "Image analysis failed"}, "500", "Internal Server Error"),
				response.New(ErrorResponse{Code: "STORAGE_ERROR", Message: "Failed to read or write enrollment storage"}, "500", "Internal Server Error"),
			}),
		),

		// POST /register - Enrollment
		endpoint.New(
			endpoint.POST,
			"/register",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Enroll a labeled reference image"),
			endpoint.WithDescription("Persists the uploaded image under the sanitized name, then validates face presence; a record is never left enrolled without a verifiable face."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("name", parameter.Form, parameter.WithDescription("Identity label for the reference image"), parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterResponse{}, "200", "Reference image enrolled successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_INPUT", Message: "Invalid or unsupported image file"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "STORAGE_ERROR", Message: "Failed to read or write enrollment storage"}, "500", "Internal Server Error"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
