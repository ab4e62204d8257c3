// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/tailoring"
	"github.com/jonathan/career-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// sparkBlocks renders 0-100 scores as bar heights
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList appends up to maxItemsToShow items under a heading.
func writeList(sb *strings.Builder, heading string, items []string) {
	sb.WriteString(heading + ":\n")
	if len(items) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var current []string
	length := 0
	for _, word := range strings.Fields(text) {
		n := len([]rune(word))
		if length > 0 && length+1+n > width {
			lines = append(lines, strings.Join(current, " "))
			current, length = nil, 0
		}
		if length > 0 {
			length++
		}
		current = append(current, word)
		length += n
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// PrintJob outputs where the job description came from.
func (p *Printer) PrintJob(job *ingestion.JobDescription) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", job.Source))
	if job.Metadata != nil {
		if job.Metadata.Platform != "" {
			sb.WriteString(fmt.Sprintf("Platform: %s\n", job.Metadata.Platform))
		}
		sb.WriteString(fmt.Sprintf("Length:   %d chars\n", job.Metadata.Length))
		if job.Metadata.Rendered {
			sb.WriteString("Rendered: headless browser\n")
		}
	}
	p.printBox("JOB DESCRIPTION", sb.String())
}

// PrintAnalysis outputs a human-readable summary of a match analysis.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match score: %d/100  %s\n\n", result.MatchScore, scoreBar(result.MatchScore, 20)))
	writeList(&sb, "Shared skills", result.SharedSkills)
	sb.WriteString("\n")
	writeList(&sb, "Missing keywords", result.MissingKeywords)
	if result.RoleRelevance != "" {
		sb.WriteString("\nRole relevance:\n")
		for _, line := range wrap(result.RoleRelevance, boxWidth-6) {
			sb.WriteString("  " + line + "\n")
		}
	}

	p.printBox("MATCH ANALYSIS", sb.String())
}

// PrintError outputs a failed step without aborting the rest of the report.
func (p *Printer) PrintError(title string, err error) {
	if err == nil {
		return
	}
	var sb strings.Builder
	for _, line := range wrap(err.Error(), boxWidth-6) {
		sb.WriteString("⚠ " + line + "\n")
	}
	p.printBox(title, sb.String())
}

// PrintTailoredCV outputs the tailored CV with [+ +] and [- -] change markers.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTailoredCV(cv types.TailoredCV, stats tailoring.ChangeStats) {
	p.printBox("TAILORED CV", fmt.Sprintf("%d additions [+ ... +], %d deletions [- ... -]", stats.Additions, stats.Deletions))
	fmt.Fprintln(p.out, tailoring.RenderPlain(cv))
	fmt.Fprintln(p.out)
}

// PrintOriginalCV outputs the unmodified CV shown in place of a failed rewrite.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOriginalCV(text string) {
	p.printBox("ORIGINAL CV", "Tailoring failed; showing your CV unchanged")
	fmt.Fprintln(p.out, text)
	fmt.Fprintln(p.out)
}

// PrintHistory outputs the session's scores in order with a trend line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHistory(entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO ANALYSES YET")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	scores := make([]int, len(entries))
	for i, e := range entries {
		scores[i] = e.Score
		sb.WriteString(fmt.Sprintf("%s  %3d  %s\n", e.Timestamp.Format("15:04:05"), e.Score, truncate(e.Source, 34)))
	}
	sb.WriteString("\nTrend: " + Sparkline(scores) + "\n")

	p.printBox("SCORE HISTORY", sb.String())
}

// Sparkline renders scores in [0,100] as one block character each.
func Sparkline(scores []int) string {
	var sb strings.Builder
	top := len(sparkBlocks) - 1
	for _, s := range scores {
		s = max(0, min(100, s))
		sb.WriteRune(sparkBlocks[s*top/100])
	}
	return sb.String()
}

// scoreBar renders score as a horizontal bar of the given width.
func scoreBar(score, width int) string {
	filled := max(0, min(width, score*width/100))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
