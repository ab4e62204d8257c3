// Package workflow runs one analyze-and-tailor action against a session.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-assistant/internal/analysis"
	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/session"
	"github.com/jonathan/career-assistant/internal/tailoring"
	"github.com/jonathan/career-assistant/internal/types"
)

// Progress steps
const (
	StepAnalysis  = "analysis"
	StepTailoring = "tailoring"
	StepHistory   = "history"
)

// Progress categories
const (
	CategoryStarted   = "started"
	CategoryCompleted = "completed"
	CategoryFailed    = "failed"
)

// ProgressEvent represents a progress update during an action
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when action progress occurs
type ProgressCallback func(event ProgressEvent)

// Outcome holds both halves of an action. Either half may have failed independently.
type Outcome struct {
	Job *ingestion.JobDescription

	Analysis    *types.AnalysisResult
	AnalysisErr error

	Tailored     types.TailoredCV
	TailoringErr error
	Stats        tailoring.ChangeStats

	// DisplayCV is the tailored markup, or the original CV text when tailoring failed.
	DisplayCV string

	// HistoryEntry is set when the analysis succeeded and was recorded.
	HistoryEntry *types.HistoryEntry
}

// Succeeded reports whether at least one of the two calls produced a result.
func (o *Outcome) Succeeded() bool {
	return o.AnalysisErr == nil || o.TailoringErr == nil
}

// Err returns the analysis error if set, else the tailoring error.
func (o *Outcome) Err() error {
	if o.AnalysisErr != nil {
		return o.AnalysisErr
	}
	return o.TailoringErr
}

// Runner wires the AI client into the analyzer and tailor for each action.
type Runner struct {
	// NewClient builds a client from the session's API key.
	NewClient       llm.Factory
	AnalyzerOptions []analysis.Option
	TailorOptions   []tailoring.Option
	Verbose         bool
}

// NewRunner creates a Runner using factory for AI clients.
func NewRunner(factory llm.Factory) *Runner {
	return &Runner{NewClient: factory}
}

// Run analyzes and tailors sess's CV against job. Precondition failures and client
// construction errors are returned as err; AI call failures are reported on the Outcome.
// History is appended only when the analysis succeeds.
func (r *Runner) Run(ctx context.Context, sess *session.Session, job *ingestion.JobDescription, onProgress ProgressCallback) (*Outcome, error) {
	if err := CheckReady(sess); err != nil {
		return nil, err
	}
	if job == nil || strings.TrimSpace(job.Text) == "" {
		return nil, ErrNoJobDescription
	}
	apiKey := sess.APIKey()
	cvText := sess.CV()

	release, err := sess.BeginAction()
	if err != nil {
		return nil, err
	}
	defer release()

	if r.NewClient == nil {
		return nil, &config.ConfigurationError{Message: "no AI client factory configured"}
	}
	client, err := r.NewClient(ctx, apiKey)
	if err != nil {
		return nil, &config.ConfigurationError{Message: "failed to create AI client", Cause: err}
	}
	defer func() {
		if cerr := client.Close(); cerr != nil && r.Verbose {
			log.Printf("[VERBOSE] closing AI client: %v", cerr)
		}
	}()

	var emitMu sync.Mutex
	emit := func(step, category, message string, content any) {
		if onProgress == nil {
			return
		}
		emitMu.Lock()
		defer emitMu.Unlock()
		onProgress(ProgressEvent{Step: step, Category: category, Message: message, Content: content})
	}

	analyzer := analysis.NewAnalyzer(client, r.AnalyzerOptions...)
	tailor := tailoring.NewTailor(client, r.TailorOptions...)
	out := &Outcome{Job: job}

	// Neither branch returns an error to the group: one failing must not cancel the other.
	var g errgroup.Group

	g.Go(func() error {
		emit(StepAnalysis, CategoryStarted, "Analyzing match...", nil)
		result, err := analyzer.Analyze(ctx, cvText, job.Text)
		if err != nil {
			out.AnalysisErr = err
			emit(StepAnalysis, CategoryFailed, err.Error(), nil)
			return nil
		}
		out.Analysis = result
		emit(StepAnalysis, CategoryCompleted, fmt.Sprintf("Match score: %d", result.MatchScore), result)
		return nil
	})

	g.Go(func() error {
		emit(StepTailoring, CategoryStarted, "Tailoring CV...", nil)
		tailored, err := tailor.Generate(ctx, cvText, job.Text)
		if err != nil {
			out.TailoringErr = err
			emit(StepTailoring, CategoryFailed, err.Error(), nil)
			return nil
		}
		out.Tailored = tailored
		out.Stats = tailoring.Stats(tailored)
		emit(StepTailoring, CategoryCompleted,
			fmt.Sprintf("Tailored CV ready (%d additions, %d deletions)", out.Stats.Additions, out.Stats.Deletions),
			out.Stats)
		return nil
	})

	_ = g.Wait()

	if out.TailoringErr != nil {
		out.DisplayCV = cvText
	} else {
		out.DisplayCV = out.Tailored.String()
	}

	if out.AnalysisErr == nil {
		entry, err := sess.History().Append(out.Analysis.MatchScore, job.Source)
		if err != nil {
			// Unreachable for validated results; surfaced as an analysis failure if it happens.
			out.AnalysisErr = &analysis.AnalysisError{Message: "could not record score", Cause: err}
			emit(StepHistory, CategoryFailed, err.Error(), nil)
		} else {
			out.HistoryEntry = &entry
			emit(StepHistory, CategoryCompleted, fmt.Sprintf("Recorded score %d", entry.Score), entry)
		}
	}

	if r.Verbose {
		log.Printf("[VERBOSE] action finished: analysis_err=%v tailoring_err=%v", out.AnalysisErr, out.TailoringErr)
	}

	return out, nil
}

// CheckReady verifies the session has an API key and a CV.
func CheckReady(sess *session.Session) error {
	if sess.APIKey() == "" {
		return &config.ConfigurationError{Message: config.ErrMissingAPIKey}
	}
	if !sess.HasCV() {
		return ErrNoCV
	}
	return nil
}

// IsPrecondition reports whether err came from a missing key, CV, or job description.
func IsPrecondition(err error) bool {
	var cfgErr *config.ConfigurationError
	return errors.Is(err, ErrNoCV) || errors.Is(err, ErrNoJobDescription) || errors.As(err, &cfgErr)
}
