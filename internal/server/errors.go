// Package server provides the HTTP API for the career assistant.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/career-assistant/internal/analysis"
	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/session"
	"github.com/jonathan/career-assistant/internal/tailoring"
	"github.com/jonathan/career-assistant/internal/workflow"
)

// Error kinds reported in JSON error bodies
const (
	KindValidation     = "validation"
	KindConfiguration  = "configuration"
	KindExtraction     = "extraction_failed"
	KindScrapeBlocked  = "scrape_blocked"
	KindScrapeFailed   = "scrape_failed"
	KindAnalysis       = "analysis_failed"
	KindTailoring      = "tailoring_failed"
	KindBusy           = "action_in_progress"
	KindSessionMissing = "session_not_found"
	KindInternal       = "internal"
)

// FallbackManual tells clients to ask the user for pasted text.
const FallbackManual = "manual"

// ErrSessionNotFound indicates the token refers to an expired or unknown session
type ErrSessionNotFound struct {
	SessionID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found or expired: %s", e.SessionID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validationError converts validator output into an ErrValidation for the first failing field.
func validationError(err error) *ErrValidation {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed '%s' check", fe.Tag())}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// ErrorKind returns the machine-readable kind for an error.
func ErrorKind(err error) string {
	_, kind := classify(err)
	return kind
}

func classify(err error) (int, string) {
	var (
		validationErr *ErrValidation
		notFoundErr   *ErrSessionNotFound
		configErr     *config.ConfigurationError
		extractionErr *ingestion.ExtractionError
		blockedErr    *ingestion.ScrapeBlockedError
		failedErr     *ingestion.ScrapeFailedError
		analysisErr   *analysis.AnalysisError
		tailoringErr  *tailoring.TailoringError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, KindValidation
	case errors.Is(err, workflow.ErrNoCV), errors.Is(err, workflow.ErrNoJobDescription):
		return http.StatusBadRequest, KindValidation
	case errors.As(err, &configErr):
		return http.StatusBadRequest, KindConfiguration
	case errors.As(err, &notFoundErr):
		return http.StatusUnauthorized, KindSessionMissing
	case errors.Is(err, session.ErrActionInProgress):
		return http.StatusConflict, KindBusy
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity, KindExtraction
	case errors.As(err, &blockedErr):
		return http.StatusUnprocessableEntity, KindScrapeBlocked
	case errors.As(err, &failedErr):
		return http.StatusBadGateway, KindScrapeFailed
	case errors.As(err, &analysisErr):
		return http.StatusBadGateway, KindAnalysis
	case errors.As(err, &tailoringErr):
		return http.StatusBadGateway, KindTailoring
	default:
		return http.StatusInternalServerError, KindInternal
	}
}
