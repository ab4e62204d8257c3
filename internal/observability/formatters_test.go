package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/tailoring"
	"github.com/jonathan/career-assistant/internal/types"
)

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(&types.AnalysisResult{
		MatchScore:      60,
		SharedSkills:    []string{"Python", "Django"},
		MissingKeywords: []string{"Kubernetes"},
		RoleRelevance:   "Strong backend experience but no container orchestration in production.",
	})
	output := buf.String()

	assert.Contains(t, output, "MATCH ANALYSIS")
	assert.Contains(t, output, "Match score: 60/100")
	assert.Contains(t, output, "• Python")
	assert.Contains(t, output, "• Kubernetes")
	assert.Contains(t, output, "container")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintAnalysis(nil)
	assert.Empty(t, buf.String())
}

func TestPrintAnalysis_EmptyListsAndOverflow(t *testing.T) {
	var buf bytes.Buffer
	skills := make([]string, 12)
	for i := range skills {
		skills[i] = "skill"
	}
	NewPrinter(&buf).PrintAnalysis(&types.AnalysisResult{MatchScore: 5, SharedSkills: skills})

	assert.Contains(t, buf.String(), "... and 4 more")
	assert.Contains(t, buf.String(), "(none)")
}

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	job := &ingestion.JobDescription{
		Text:     "text",
		Source:   "https://jobs.lever.co/acme/1",
		Metadata: &ingestion.Metadata{Platform: "lever", Length: 1234, Rendered: true},
	}
	NewPrinter(&buf).PrintJob(job)

	assert.Contains(t, buf.String(), "lever")
	assert.Contains(t, buf.String(), "1234 chars")
	assert.Contains(t, buf.String(), "headless browser")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintError("ANALYSIS FAILED", errors.New("AI request failed: HTTP 500"))

	assert.Contains(t, buf.String(), "ANALYSIS FAILED")
	assert.Contains(t, buf.String(), "HTTP 500")
}

func TestPrintTailoredCV(t *testing.T) {
	var buf bytes.Buffer
	cv := types.TailoredCV(`<p>Python <span class='cv-add'>and Kubernetes</span> <span class='cv-del'>PHP</span></p>`)
	NewPrinter(&buf).PrintTailoredCV(cv, tailoring.Stats(cv))

	output := buf.String()
	assert.Contains(t, output, "1 additions")
	assert.Contains(t, output, "[+and Kubernetes+]")
	assert.Contains(t, output, "[-PHP-]")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	NewPrinter(&buf).PrintHistory([]types.HistoryEntry{
		{Timestamp: now, Score: 40, Source: "manual"},
		{Timestamp: now.Add(time.Minute), Score: 100, Source: "https://boards.greenhouse.io/acme/jobs/1"},
	})

	output := buf.String()
	assert.Contains(t, output, "SCORE HISTORY")
	assert.Contains(t, output, "15:04:05")
	assert.Contains(t, output, "Trend: ▃█")
}

func TestPrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintHistory(nil)
	assert.Contains(t, buf.String(), "NO ANALYSES YET")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁▄█", Sparkline([]int{0, 50, 100}))
	assert.Equal(t, "", Sparkline(nil))
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
