// Package fetch provides URL fetching and HTML-to-prose extraction for job postings.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent mimics a desktop browser; many job boards refuse unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 2 << 20

// MinProseLength is the shortest extracted text treated as a real posting.
// Anything shorter is almost always a login wall, bot check or JS shell.
const MinProseLength = 100

// proseSelector picks the elements that carry a posting's readable text.
const proseSelector = "h1, h2, p, li"

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	Text        string
	ContentType string
	StatusCode  int
	// Rendered is set when the HTML came from the headless browser.
	Rendered bool
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	// StatusCode is non-zero when the server answered with a non-2xx status.
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the fetch failed because a deadline was exceeded.
func (e *Error) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (o *Options) withDefaults() *Options {
	merged := DefaultOptions()
	if o == nil {
		return merged
	}
	if o.Timeout > 0 {
		merged.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		merged.UserAgent = o.UserAgent
	}
	if o.MaxBodyBytes > 0 {
		merged.MaxBodyBytes = o.MaxBodyBytes
	}
	merged.Headers = o.Headers
	merged.Client = o.Client
	return merged
}

// URL retrieves HTML content from a URL.
// On a non-2xx status the partial Result is returned alongside an *Error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()

	parsedURL, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBodyBytes))
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

// Page fetches a URL and fills Result.Text with the extracted prose.
func Page(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	result, err := URL(ctx, urlStr, opts)
	if err != nil {
		return result, err
	}

	text, err := ExtractProse(result.HTML)
	if err != nil {
		return result, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}
	result.Text = text
	return result, nil
}

// ExtractProse returns the text of every h1, h2, p and li element in document order.
// Each element's text is trimmed with inner whitespace collapsed; empty elements are skipped.
func ExtractProse(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	var lines []string
	doc.Find(proseSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			lines = append(lines, text)
		}
	})

	return strings.Join(lines, "\n"), nil
}

// TooShort reports whether extracted prose is below MinProseLength characters.
func TooShort(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < MinProseLength
}
