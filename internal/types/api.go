package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateSessionRequest starts a new session. APIKey is optional and can be set later.
type CreateSessionRequest struct {
	APIKey string `json:"api_key,omitempty"`
}

// CreateSessionResponse carries the bearer token that identifies the session.
type CreateSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SetAPIKeyRequest stores the AI backend key in the session.
type SetAPIKeyRequest struct {
	APIKey string `json:"api_key" validate:"required,min=1"`
}

// SetCVRequest stores pasted CV text in the session.
type SetCVRequest struct {
	Text string `json:"text" validate:"required"`
}

// CVResponse reports the CV text now held by the session.
type CVResponse struct {
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}

// FetchJobRequest asks the server to scrape a job posting.
type FetchJobRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// FetchJobResponse is returned when a posting was scraped successfully.
type FetchJobResponse struct {
	Text     string `json:"text"`
	URL      string `json:"url"`
	Platform string `json:"platform"`
	Hash     string `json:"hash"`
}

// ScrapeFallbackResponse tells the client to ask the user for pasted text instead.
type ScrapeFallbackResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind"`
	Fallback  string `json:"fallback"`
}

// AnalyzeRequest runs one analysis. Either JobText or JobURL must be set;
// when both are present the text is used and the URL is recorded as the source.
type AnalyzeRequest struct {
	JobText string `json:"job_text" validate:"required_without=JobURL"`
	JobURL  string `json:"job_url,omitempty" validate:"omitempty,url"`
}

// AnalyzeResponse reports both halves of an analysis independently.
type AnalyzeResponse struct {
	Analysis      *AnalysisResult `json:"analysis,omitempty"`
	AnalysisError string          `json:"analysis_error,omitempty"`
	TailoredCV    string          `json:"tailored_cv,omitempty"`
	TailoringErr  string          `json:"tailoring_error,omitempty"`
	Additions     int             `json:"additions"`
	Deletions     int             `json:"deletions"`
	History       []HistoryEntry  `json:"history"`
}

// HistoryResponse lists the session's analyses in insertion order.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Trend   []int          `json:"trend"`
}

// Validate validates the SetAPIKeyRequest using the validator.
func (r *SetAPIKeyRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SetCVRequest using the validator.
func (r *SetCVRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the FetchJobRequest using the validator.
func (r *FetchJobRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
