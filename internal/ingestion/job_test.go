package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/career-assistant/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `<html><body>
<h1>Senior Backend Engineer</h1>
<p>We are looking for an engineer to build reliable services in Python and Go.</p>
<ul><li>5+ years of backend development</li><li>Experience with Kubernetes</li></ul>
</body></html>`

func newJobServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFromURL_Success(t *testing.T) {
	srv, _ := newJobServer(t, http.StatusOK, postingHTML)

	job, err := FromURL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, job.Source)
	assert.True(t, strings.HasPrefix(job.Text, "Senior Backend Engineer\nWe are looking"))
	assert.Contains(t, job.Text, "Experience with Kubernetes")
	assert.Equal(t, string(fetch.PlatformUnknown), job.Metadata.Platform)
	assert.False(t, job.Metadata.Rendered)
}

func TestFromURL_ShortPageIsBlocked(t *testing.T) {
	srv, _ := newJobServer(t, http.StatusOK, `<html><body><p>Hello world!</p></body></html>`)

	job, err := FromURL(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Nil(t, job)

	var blocked *ScrapeBlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, 12, blocked.Length)
	assert.Zero(t, blocked.StatusCode)
	assert.True(t, IsScrapeError(err))
}

func TestFromURL_ForbiddenIsBlocked(t *testing.T) {
	srv, _ := newJobServer(t, http.StatusForbidden, postingHTML)

	_, err := FromURL(context.Background(), srv.URL, nil)
	var blocked *ScrapeBlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, http.StatusForbidden, blocked.StatusCode)
	assert.Contains(t, err.Error(), "403")
}

func TestFromURL_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := FromURL(context.Background(), url, nil)
	var failed *ScrapeFailedError
	require.True(t, errors.As(err, &failed))
	assert.True(t, IsScrapeError(err))
}

func TestFromURL_InvalidURL(t *testing.T) {
	_, err := FromURL(context.Background(), "jobs.example.com/123", nil)
	var failed *ScrapeFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "invalid URL", failed.Message)
}

func TestFromURL_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	opts := &JobOptions{Fetch: &fetch.Options{Timeout: 50 * time.Millisecond}}
	_, err := FromURL(context.Background(), srv.URL, opts)
	var failed *ScrapeFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "timed out", failed.Message)
}

func TestFromURL_BrowserFallback(t *testing.T) {
	srv, _ := newJobServer(t, http.StatusOK, `<html><body><div id="root"></div></body></html>`)

	var rendered int32
	opts := &JobOptions{
		UseBrowser: true,
		Render: func(_ context.Context, url string) (string, error) {
			atomic.AddInt32(&rendered, 1)
			return postingHTML, nil
		},
	}

	job, err := FromURL(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&rendered))
	assert.True(t, job.Metadata.Rendered)
	assert.Contains(t, job.Text, "Senior Backend Engineer")
}

func TestFromURL_BrowserFallbackStillShort(t *testing.T) {
	srv, _ := newJobServer(t, http.StatusOK, `<p>Loading</p>`)

	opts := &JobOptions{
		UseBrowser: true,
		Render: func(context.Context, string) (string, error) {
			return `<p>Please sign in</p>`, nil
		},
	}

	_, err := FromURL(context.Background(), srv.URL, opts)
	var blocked *ScrapeBlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, len("Loading"), blocked.Length)
}

func TestFromURL_BrowserErrorKeepsBlocked(t *testing.T) {
	srv, _ := newJobServer(t, http.StatusOK, `<p>Loading</p>`)

	opts := &JobOptions{
		UseBrowser: true,
		Render: func(context.Context, string) (string, error) {
			return "", errors.New("chrome not installed")
		},
	}

	_, err := FromURL(context.Background(), srv.URL, opts)
	var blocked *ScrapeBlockedError
	assert.True(t, errors.As(err, &blocked))
}

func TestFromURL_UsesCache(t *testing.T) {
	srv, hits := newJobServer(t, http.StatusOK, postingHTML)
	opts := &JobOptions{Cache: fetch.NewCache(time.Minute)}

	first, err := FromURL(context.Background(), srv.URL, opts)
	require.NoError(t, err)
	second, err := FromURL(context.Background(), srv.URL, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestAcquireJob(t *testing.T) {
	srv, hits := newJobServer(t, http.StatusOK, postingHTML)

	t.Run("text only", func(t *testing.T) {
		job, err := AcquireJob(context.Background(), "  Go developer  ", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "  Go developer  ", job.Text)
		assert.Equal(t, "manual", job.Source)
	})

	t.Run("text wins over url", func(t *testing.T) {
		job, err := AcquireJob(context.Background(), "Pasted posting", "https://boards.greenhouse.io/acme/jobs/1", nil)
		require.NoError(t, err)
		assert.Equal(t, "Pasted posting", job.Text)
		assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", job.Source)
		assert.Equal(t, "greenhouse", job.Metadata.Platform)
		assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	})

	t.Run("url only", func(t *testing.T) {
		job, err := AcquireJob(context.Background(), "", srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, srv.URL, job.Source)
		assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	})

	t.Run("nothing", func(t *testing.T) {
		_, err := AcquireJob(context.Background(), " ", "", nil)
		var failed *ScrapeFailedError
		assert.True(t, errors.As(err, &failed))
	})
}

func TestIsScrapeError(t *testing.T) {
	assert.False(t, IsScrapeError(nil))
	assert.False(t, IsScrapeError(errors.New("boom")))
	assert.False(t, IsScrapeError(&ExtractionError{Message: "x"}))
	assert.True(t, IsScrapeError(&ScrapeBlockedError{URL: "u", Length: 3}))
}
