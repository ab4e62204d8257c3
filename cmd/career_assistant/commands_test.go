package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/llm/llmtest"
	"github.com/jonathan/career-assistant/internal/workflow"
)

const (
	testCV         = "Senior Python developer. Built Django services and data pipelines on AWS."
	testJob        = "We need a backend engineer with Python and Kubernetes experience."
	testAnalysis   = `{"match_score": 60, "shared_skills": ["Python"], "missing_keywords": ["Kubernetes"], "role_relevance": "Strong Python background."}`
	testTailoredCV = `<p>Senior Python developer <span class='cv-add'>with Kubernetes exposure</span>.</p>`
)

// resetFlags restores every flag on cmd to its default so package-level commands can run repeatedly.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	})
}

// execute runs the CLI in process with the given arguments and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, cmd := range rootCmd.Commands() {
		resetFlags(t, cmd)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// useMockClient routes every AI call to client and records the API keys it was built with.
func useMockClient(t *testing.T, client *llmtest.MockClient) *[]string {
	t.Helper()
	keys := &[]string{}
	previous := newLLMFactory
	newLLMFactory = func(_ *llm.Config) llm.Factory { return client.Factory(keys) }
	t.Cleanup(func() { newLLMFactory = previous })
	return keys
}

func workingClient() *llmtest.MockClient {
	return &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return testAnalysis, nil
		},
		GenerateContentFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return testTailoredCV, nil
		},
	}
}

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func postingServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const longPosting = `<html><body>
<h1>Backend Engineer</h1>
<p>We are hiring a backend engineer to build Python services that run on Kubernetes.</p>
<ul><li>Five years of Python</li><li>Production Kubernetes experience</li></ul>
</body></html>`

func TestAnalyze_PrintsReportAndHistory(t *testing.T) {
	clearKeyEnv(t)
	client := workingClient()
	keys := useMockClient(t, client)

	out, err := execute(t, "analyze", "--api-key", "flag-key", "--cv-text", testCV,
		"--job-text", testJob, "--job-text", "Platform engineer, Python and Go.")
	require.NoError(t, err)

	assert.Contains(t, out, "MATCH ANALYSIS")
	assert.Contains(t, out, "Match score: 60/100")
	assert.Contains(t, out, "Kubernetes")
	assert.Contains(t, out, "TAILORED CV")
	assert.Contains(t, out, "[+with Kubernetes exposure+]")
	assert.Contains(t, out, "SCORE HISTORY")
	assert.Equal(t, []string{"flag-key", "flag-key"}, *keys)
	assert.Len(t, client.Calls(), 4)
}

func TestAnalyze_CVAndJobFiles(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	keys := useMockClient(t, workingClient())

	cvPath := writeFile(t, "cv.txt", testCV)
	jobPath := writeFile(t, "job.txt", testJob)

	out, err := execute(t, "analyze", "--cv", cvPath, "--job-file", jobPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Match score: 60/100")
	assert.Equal(t, []string{"env-key"}, *keys)
}

func TestAnalyze_ConfigFileKey(t *testing.T) {
	clearKeyEnv(t)
	keys := useMockClient(t, workingClient())
	cfgPath := writeFile(t, "config.yaml", "api_key: file-key\nai_timeout_seconds: 5\n")

	_, err := execute(t, "analyze", "--config", cfgPath, "--cv-text", testCV, "--job-text", testJob)
	require.NoError(t, err)
	assert.Equal(t, []string{"file-key"}, *keys)
}

func TestAnalyze_MissingAPIKey(t *testing.T) {
	clearKeyEnv(t)
	client := workingClient()
	useMockClient(t, client)

	_, err := execute(t, "analyze", "--cv-text", testCV, "--job-text", testJob)
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Empty(t, client.Calls())
}

func TestAnalyze_NoCV(t *testing.T) {
	clearKeyEnv(t)
	useMockClient(t, workingClient())

	_, err := execute(t, "analyze", "--api-key", "k", "--job-text", testJob)
	assert.ErrorIs(t, err, workflow.ErrNoCV)
}

func TestAnalyze_NoJob(t *testing.T) {
	clearKeyEnv(t)
	useMockClient(t, workingClient())

	_, err := execute(t, "analyze", "--api-key", "k", "--cv-text", testCV, "--job-text", "   ")
	assert.ErrorIs(t, err, workflow.ErrNoJobDescription)
}

func TestAnalyze_CVFlagsExclusive(t *testing.T) {
	clearKeyEnv(t)
	_, err := execute(t, "analyze", "--api-key", "k", "--cv", "cv.pdf", "--cv-text", testCV, "--job-text", testJob)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestAnalyze_TailoringFailureShowsOriginalCV(t *testing.T) {
	clearKeyEnv(t)
	client := workingClient()
	client.GenerateContentFunc = func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
		return "", errors.New("backend unavailable")
	}
	useMockClient(t, client)

	out, err := execute(t, "analyze", "--api-key", "k", "--cv-text", testCV, "--job-text", testJob)
	require.NoError(t, err)
	assert.Contains(t, out, "Match score: 60/100")
	assert.Contains(t, out, "TAILORING FAILED")
	assert.Contains(t, out, "ORIGINAL CV")
	assert.Contains(t, out, testCV)
}

func TestAnalyze_AllCallsFail(t *testing.T) {
	clearKeyEnv(t)
	failing := errors.New("HTTP 500")
	useMockClient(t, &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", failing
		},
		GenerateContentFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", failing
		},
	})

	out, err := execute(t, "analyze", "--api-key", "k", "--cv-text", testCV, "--job-text", testJob)
	require.Error(t, err)
	assert.Contains(t, out, "ANALYSIS FAILED")
	assert.Contains(t, out, "NO ANALYSES YET")
}

func TestAnalyze_BlockedURLIsSkipped(t *testing.T) {
	clearKeyEnv(t)
	client := workingClient()
	useMockClient(t, client)
	srv := postingServer(t, "<html><body><p>Please log in</p></body></html>", http.StatusOK)

	out, err := execute(t, "analyze", "--api-key", "k", "--cv-text", testCV,
		"--job-url", srv.URL, "--job-text", testJob)
	require.NoError(t, err)
	assert.Contains(t, out, "JOB FETCH FAILED")
	assert.Contains(t, out, "--job-text")
	assert.Len(t, client.Calls(), 2, "only the pasted job is analyzed")
}

func TestAnalyze_OnlyBlockedURL(t *testing.T) {
	clearKeyEnv(t)
	client := workingClient()
	useMockClient(t, client)
	srv := postingServer(t, "<html><body><p>Forbidden</p></body></html>", http.StatusForbidden)

	_, err := execute(t, "analyze", "--api-key", "k", "--cv-text", testCV, "--job-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
	assert.Empty(t, client.Calls())
}

func TestAnalyze_FetchedURL(t *testing.T) {
	clearKeyEnv(t)
	client := workingClient()
	useMockClient(t, client)
	srv := postingServer(t, longPosting, http.StatusOK)

	out, err := execute(t, "analyze", "--api-key", "k", "--cv-text", testCV, "--job-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL)
	require.NotEmpty(t, client.Calls())
	assert.Contains(t, client.Calls()[0].Prompt, "Production Kubernetes experience")
}

func TestExtractCV_TextFile(t *testing.T) {
	path := writeFile(t, "cv.txt", "Jane Doe\n\n\n\nGo engineer\r\n")

	out, err := execute(t, "extract-cv", "--cv", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Go engineer")
}

func TestExtractCV_WritesOutput(t *testing.T) {
	path := writeFile(t, "cv.txt", "Jane Doe, Go engineer")
	dest := filepath.Join(t.TempDir(), "cv.out.txt")

	out, err := execute(t, "extract-cv", "--cv", path, "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, dest)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe, Go engineer", strings.TrimSpace(string(written)))
}

func TestExtractCV_MissingFile(t *testing.T) {
	_, err := execute(t, "extract-cv", "--cv", filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestExtractCV_RequiresFlag(t *testing.T) {
	_, err := execute(t, "extract-cv")
	require.Error(t, err)
}

func TestFetchJob_PrintsText(t *testing.T) {
	srv := postingServer(t, longPosting, http.StatusOK)

	out, err := execute(t, "fetch-job", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "Five years of Python")
}

func TestFetchJob_WritesOutput(t *testing.T) {
	srv := postingServer(t, longPosting, http.StatusOK)
	dir := t.TempDir()

	_, err := execute(t, "fetch-job", "--url", srv.URL, "--out", dir)
	require.NoError(t, err)

	text, err := os.ReadFile(filepath.Join(dir, "job_posting.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Backend Engineer")

	meta, err := os.ReadFile(filepath.Join(dir, "job_posting.meta.json"))
	require.NoError(t, err)
	assert.Contains(t, string(meta), srv.URL)
}

func TestFetchJob_Blocked(t *testing.T) {
	srv := postingServer(t, "<html><body><p>Sign in</p></body></html>", http.StatusOK)

	_, err := execute(t, "fetch-job", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--job-file")
}

func TestBuildServer_WithoutDefaultKey(t *testing.T) {
	clearKeyEnv(t)
	useMockClient(t, workingClient())
	resetFlags(t, serveCmd)
	require.NoError(t, serveCmd.Flags().Set("port", "0"))

	srv, err := buildServer(serveCmd)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuildServer_InvalidProvider(t *testing.T) {
	useMockClient(t, workingClient())
	resetFlags(t, serveCmd)
	require.NoError(t, serveCmd.Flags().Set("provider", "openai"))

	_, err := buildServer(serveCmd)
	require.Error(t, err)
}
