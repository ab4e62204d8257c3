package workflow

import "errors"

var (
	// ErrNoCV is returned when an action is triggered before a CV was provided.
	ErrNoCV = errors.New("no CV provided: upload a document or paste CV text first")
	// ErrNoJobDescription is returned when the job text is missing or blank.
	ErrNoJobDescription = errors.New("no job description provided: paste the job text or fetch it from a URL")
)
