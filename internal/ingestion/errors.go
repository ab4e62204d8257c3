package ingestion

import (
	"errors"
	"fmt"
)

// ExtractionError is returned when a CV document cannot be parsed at all.
type ExtractionError struct {
	Filename string
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	name := e.Filename
	if name == "" {
		name = "document"
	}
	if e.Cause != nil {
		return fmt.Sprintf("could not extract text from %s: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("could not extract text from %s: %s", name, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ScrapeBlockedError means the page was reachable but yielded too little prose,
// which usually indicates an anti-bot wall, a login gate or a JS-only shell.
type ScrapeBlockedError struct {
	URL string
	// Length is the number of characters that were extracted.
	Length int
	// StatusCode is set when the site answered with a non-2xx status.
	StatusCode int
}

func (e *ScrapeBlockedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("job page %s was blocked (HTTP %d); paste the description instead", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("job page %s returned only %d characters of text; paste the description instead", e.URL, e.Length)
}

// ScrapeFailedError means the page could not be fetched: bad URL, network failure or timeout.
type ScrapeFailedError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ScrapeFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("could not fetch job page %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("could not fetch job page %s: %s", e.URL, e.Message)
}

func (e *ScrapeFailedError) Unwrap() error {
	return e.Cause
}

// IsScrapeError reports whether err is a recoverable scraping failure, in which
// case the caller should ask the user to paste the job description manually.
func IsScrapeError(err error) bool {
	var blocked *ScrapeBlockedError
	var failed *ScrapeFailedError
	return errors.As(err, &blocked) || errors.As(err, &failed)
}
