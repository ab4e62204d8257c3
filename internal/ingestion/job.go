package ingestion

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jonathan/career-assistant/internal/fetch"
	"github.com/jonathan/career-assistant/internal/types"
)

// JobDescription is the job text an analysis runs against.
type JobDescription struct {
	Text string
	// Source is the job URL, or types.SourceManual for pasted text.
	Source   string
	Metadata *Metadata
}

// JobOptions configures remote job acquisition.
type JobOptions struct {
	Fetch *fetch.Options
	// UseBrowser retries a blocked page once through a headless browser render.
	UseBrowser     bool
	BrowserTimeout time.Duration
	// Render overrides the browser renderer.
	Render  fetch.Renderer
	Cache   *fetch.Cache
	Verbose bool
}

// FromText wraps pasted job text. The text is used verbatim.
func FromText(text string) *JobDescription {
	return &JobDescription{
		Text:     text,
		Source:   types.SourceManual,
		Metadata: NewMetadata(text, ""),
	}
}

// AcquireJob prefers pasted text; a URL is only fetched when no text was supplied.
// When both are present the URL is still recorded as the source.
func AcquireJob(ctx context.Context, text, url string, opts *JobOptions) (*JobDescription, error) {
	url = strings.TrimSpace(url)
	if strings.TrimSpace(text) != "" {
		job := FromText(text)
		if url != "" {
			job.Source = url
			job.Metadata.URL = url
			job.Metadata.Platform = string(fetch.DetectPlatform(url))
		}
		return job, nil
	}
	if url == "" {
		return nil, &ScrapeFailedError{Message: "no job description or URL supplied"}
	}
	return FromURL(ctx, url, opts)
}

// FromURL fetches a posting and extracts its prose.
// Returns *ScrapeBlockedError when too little text comes back and *ScrapeFailedError
// when the page cannot be fetched. Both mean "ask the user to paste it".
func FromURL(ctx context.Context, url string, opts *JobOptions) (*JobDescription, error) {
	if opts == nil {
		opts = &JobOptions{}
	}
	url = strings.TrimSpace(url)
	platform := fetch.DetectPlatform(url)
	if opts.Verbose {
		log.Printf("[VERBOSE] URL: %s (platform: %s)", url, platform)
	}

	if cached, ok := opts.Cache.Get(url); ok {
		if opts.Verbose {
			log.Printf("[VERBOSE] Using cached posting: %d chars", len(cached.Text))
		}
		return jobFromResult(url, platform, cached), nil
	}

	result, err := fetch.Page(ctx, url, opts.Fetch)
	statusCode := 0
	if err != nil {
		var fetchErr *fetch.Error
		if !errors.As(err, &fetchErr) || fetchErr.StatusCode == 0 {
			return nil, scrapeFailed(url, err)
		}
		statusCode = fetchErr.StatusCode
		if opts.Verbose {
			log.Printf("[VERBOSE] Site answered HTTP %d", statusCode)
		}
	} else if opts.Verbose {
		log.Printf("[VERBOSE] Extracted text: %d chars", len([]rune(result.Text)))
	}

	if statusCode == 0 && !fetch.TooShort(result.Text) {
		opts.Cache.Put(url, result)
		return jobFromResult(url, platform, result), nil
	}

	if opts.UseBrowser {
		if rendered := renderWithBrowser(ctx, url, opts); rendered != nil {
			opts.Cache.Put(url, rendered)
			return jobFromResult(url, platform, rendered), nil
		}
	}

	length := 0
	if result != nil {
		length = len([]rune(strings.TrimSpace(result.Text)))
	}
	return nil, &ScrapeBlockedError{URL: url, Length: length, StatusCode: statusCode}
}

// renderWithBrowser returns a usable result or nil; browser failures are not surfaced
// because the HTTP attempt already determined the error kind.
func renderWithBrowser(ctx context.Context, url string, opts *JobOptions) *fetch.Result {
	render := opts.Render
	if render == nil {
		render = fetch.BrowserRenderer(opts.BrowserTimeout, opts.Verbose)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] Content too short, falling back to browser rendering...")
	}

	html, err := render(ctx, url)
	if err != nil {
		if opts.Verbose {
			log.Printf("[VERBOSE] Browser rendering failed: %v", err)
		}
		return nil
	}

	text, err := fetch.ExtractProse(html)
	if err != nil || fetch.TooShort(text) {
		if opts.Verbose {
			log.Printf("[VERBOSE] Browser render still too short: %d chars", len([]rune(text)))
		}
		return nil
	}

	return &fetch.Result{URL: url, HTML: html, Text: text, StatusCode: 200, Rendered: true}
}

func jobFromResult(url string, platform fetch.Platform, result *fetch.Result) *JobDescription {
	metadata := NewMetadata(result.Text, url)
	metadata.Platform = string(platform)
	metadata.Rendered = result.Rendered
	return &JobDescription{
		Text:     result.Text,
		Source:   url,
		Metadata: metadata,
	}
}

func scrapeFailed(url string, err error) *ScrapeFailedError {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		msg := fetchErr.Message
		if fetchErr.Timeout() {
			msg = "timed out"
		}
		return &ScrapeFailedError{URL: url, Message: msg, Cause: fetchErr.Cause}
	}
	return &ScrapeFailedError{URL: url, Message: "request failed", Cause: err}
}
