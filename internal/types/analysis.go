// Package types provides type definitions for structured data used throughout the career assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// AnalysisResult is the structured match analysis produced by the model.
type AnalysisResult struct {
	MatchScore      int      `json:"match_score" validate:"gte=0,lte=100"`
	SharedSkills    []string `json:"shared_skills" validate:"required,dive,required"`
	MissingKeywords []string `json:"missing_keywords" validate:"required,dive,required"`
	RoleRelevance   string   `json:"role_relevance"`
}

// Validate validates the AnalysisResult using the validator.
func (r *AnalysisResult) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// HistoryEntry records the outcome of one successful analysis.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	// Source is the job URL, or SourceManual for pasted text.
	Source string `json:"source"`
}

// SourceManual marks a job description that was pasted rather than fetched.
const SourceManual = "manual"

// TailoredCV is model-produced markup. Additions are wrapped in
// <span class='cv-add'>, deletions in <span class='cv-del'>.
type TailoredCV string

// String returns the raw markup.
func (t TailoredCV) String() string {
	return string(t)
}
