package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/server/middleware"
	"github.com/jonathan/career-assistant/internal/session"
	"github.com/jonathan/career-assistant/internal/tailoring"
	"github.com/jonathan/career-assistant/internal/types"
	"github.com/jonathan/career-assistant/internal/workflow"
)

// maxJSONBodyBytes caps JSON request bodies; pasted CVs and job posts fit comfortably.
const maxJSONBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst and validates it when dst has a Validate method.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "Invalid request body: " + err.Error()}
	}
	if v, ok := dst.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return validationError(err)
		}
	}
	return nil
}

// sessionFrom resolves the session named by the request's token.
func (s *Server) sessionFrom(r *http.Request) (*session.Session, error) {
	id, err := middleware.GetSessionID(r)
	if err != nil {
		return nil, &ErrSessionNotFound{}
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, &ErrSessionNotFound{SessionID: id}
	}
	return sess, nil
}

// handleCreateSession starts an empty session and returns its bearer token
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			s.errorFor(w, err)
			return
		}
	}

	sess := s.sessions.Create()
	key := req.APIKey
	if key == "" {
		key = s.defaultAPIKey
	}
	sess.SetAPIKey(key)

	token, expiresAt, err := s.jwtService.GenerateToken(sess.ID)
	if err != nil {
		s.sessions.Delete(sess.ID)
		s.errorFor(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// handleDeleteSession discards the session and everything it holds
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleSetAPIKey stores the AI key for this session
func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	var req types.SetAPIKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFor(w, err)
		return
	}

	sess.SetAPIKey(req.APIKey)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetCV returns the CV text held by the session
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cvResponse(sess.CV()))
}

// handleSetCV stores pasted CV text
func (s *Server) handleSetCV(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	var req types.SetCVRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFor(w, err)
		return
	}

	text := ingestion.CVFromText(req.Text)
	sess.SetCV(text)
	s.jsonResponse(w, http.StatusOK, cvResponse(text))
}

// handleUploadCV extracts text from an uploaded PDF, DOCX or text file
func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.errorFor(w, &ErrValidation{Field: "file", Message: "invalid or too large upload: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "file", Message: "missing 'file' form field"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "file", Message: err.Error()})
		return
	}

	text, err := ingestion.ExtractCV(header.Filename, data)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	if s.verbose {
		log.Printf("[VERBOSE] Extracted %d chars from %s", len([]rune(text)), header.Filename)
	}
	sess.SetCV(text)
	s.jsonResponse(w, http.StatusOK, cvResponse(text))
}

func cvResponse(text string) types.CVResponse {
	return types.CVResponse{Text: text, Characters: len([]rune(text))}
}

// handleFetchJob scrapes a posting; scrape errors come back with a manual-entry fallback
func (s *Server) handleFetchJob(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessionFrom(r); err != nil {
		s.errorFor(w, err)
		return
	}

	var req types.FetchJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFor(w, err)
		return
	}

	job, err := ingestion.FromURL(r.Context(), req.URL, s.jobOptions)
	if err != nil {
		s.scrapeErrorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.FetchJobResponse{
		Text:     job.Text,
		URL:      job.Source,
		Platform: job.Metadata.Platform,
		Hash:     job.Metadata.Hash,
	})
}

// scrapeErrorResponse writes a scrape failure with the manual fallback hint.
func (s *Server) scrapeErrorResponse(w http.ResponseWriter, err error) {
	if !ingestion.IsScrapeError(err) {
		s.errorFor(w, err)
		return
	}
	status, kind := classify(err)
	s.jsonResponse(w, status, types.ScrapeFallbackResponse{
		Error:     err.Error(),
		ErrorKind: kind,
		Fallback:  FallbackManual,
	})
}

// prepareAnalysis resolves the session and job for both analyze endpoints.
// It writes the error response itself and returns ok=false on failure.
func (s *Server) prepareAnalysis(w http.ResponseWriter, r *http.Request) (*session.Session, *ingestion.JobDescription, bool) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.errorFor(w, err)
		return nil, nil, false
	}

	var req types.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFor(w, err)
		return nil, nil, false
	}

	// Fail fast before scraping anything.
	if strings.TrimSpace(req.JobText) == "" && strings.TrimSpace(req.JobURL) == "" {
		s.errorFor(w, workflow.ErrNoJobDescription)
		return nil, nil, false
	}
	if err := workflow.CheckReady(sess); err != nil {
		s.errorFor(w, err)
		return nil, nil, false
	}

	job, err := ingestion.AcquireJob(r.Context(), req.JobText, req.JobURL, s.jobOptions)
	if err != nil {
		s.scrapeErrorResponse(w, err)
		return nil, nil, false
	}
	return sess, job, true
}

// handleAnalyze runs the match analysis and CV tailoring
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, job, ok := s.prepareAnalysis(w, r)
	if !ok {
		return
	}

	out, err := s.runner.Run(r.Context(), sess, job, nil)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	status := http.StatusOK
	if !out.Succeeded() {
		status = HTTPStatus(out.Err())
	}
	s.jsonResponse(w, status, analyzeResponse(sess, out))
}

// handleAnalyzeStream runs an analysis and streams progress via SSE
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	sess, job, ok := s.prepareAnalysis(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting streaming analysis...")

	out, err := s.runner.Run(r.Context(), sess, job, func(event workflow.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	})
	if err != nil {
		sse.WriteError(err.Error(), HTTPStatus(err))
		return
	}

	sse.WriteResult(analyzeResponse(sess, out))
	log.Printf("Streaming analysis completed")
}

// analyzeResponse flattens an outcome. The original CV stands in when tailoring failed.
func analyzeResponse(sess *session.Session, out *workflow.Outcome) types.AnalyzeResponse {
	resp := types.AnalyzeResponse{
		Analysis:   out.Analysis,
		TailoredCV: out.DisplayCV,
		Additions:  out.Stats.Additions,
		Deletions:  out.Stats.Deletions,
		History:    sess.History().Entries(),
	}
	if out.AnalysisErr != nil {
		resp.AnalysisError = userMessage(out.AnalysisErr)
	}
	if out.TailoringErr != nil {
		resp.TailoringErr = userMessage(out.TailoringErr)
	}
	return resp
}

// userMessage returns the error text shown to users.
func userMessage(err error) string {
	var tailoringErr *tailoring.TailoringError
	if errors.As(err, &tailoringErr) {
		return fmt.Sprintf("%s (showing your original CV)", err.Error())
	}
	return err.Error()
}

// handleHistory lists the session's past scores
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.HistoryResponse{
		Entries: sess.History().Entries(),
		Trend:   sess.History().Trend(),
	})
}
