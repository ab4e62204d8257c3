package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/fetch"
	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/observability"
	"github.com/jonathan/career-assistant/internal/session"
	"github.com/jonathan/career-assistant/internal/workflow"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a CV against one or more job descriptions and tailor it",
	Long: `Analyze a CV against job descriptions. For each job the match score, shared skills,
missing keywords and role relevance are printed, followed by a tailored CV with
[+ additions +] and [- deletions -] marked. Several jobs can be given; the score
history of the run is printed at the end.`,
	RunE: runAnalyze,
}

var (
	analyzeCVPath   string
	analyzeCVText   string
	analyzeJobTexts []string
	analyzeJobFiles []string
	analyzeJobURLs  []string
	analyzeSettings settingsFlags
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCVPath, "cv", "", "Path to the CV file (.pdf, .docx or .txt)")
	analyzeCmd.Flags().StringVar(&analyzeCVText, "cv-text", "", "CV text (alternative to --cv)")
	analyzeCmd.Flags().StringArrayVar(&analyzeJobTexts, "job-text", nil, "Job description text (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&analyzeJobFiles, "job-file", nil, "Path to a job description text file (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&analyzeJobURLs, "job-url", nil, "URL of a job posting to fetch (repeatable)")
	analyzeSettings.register(analyzeCmd)

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analyzeCVPath != "" && analyzeCVText != "" {
		return fmt.Errorf("--cv and --cv-text are mutually exclusive; provide only one")
	}

	cfg, err := analyzeSettings.load(cmd)
	if err != nil {
		return err
	}
	apiKey, err := config.ResolveAPIKey(analyzeSettings.apiKey, &cfg)
	if err != nil {
		return err
	}

	cvText := ingestion.CVFromText(analyzeCVText)
	if analyzeCVPath != "" {
		cvText, err = readCV(analyzeCVPath)
		if err != nil {
			return err
		}
	}

	sess := session.New()
	sess.SetAPIKey(apiKey)
	sess.SetCV(cvText)
	if err := workflow.CheckReady(sess); err != nil {
		return err
	}

	runner, err := newRunner(&cfg)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	jobs, err := collectJobs(ctx, &cfg, printer)
	if err != nil {
		return err
	}

	var progress workflow.ProgressCallback
	if cfg.Verbose {
		progress = func(event workflow.ProgressEvent) {
			log.Printf("[VERBOSE] %s %s: %s", event.Step, event.Category, event.Message)
		}
	}

	failed := 0
	for _, job := range jobs {
		printer.PrintJob(job)
		out, err := runner.Run(ctx, sess, job, progress)
		if err != nil {
			if workflow.IsPrecondition(err) {
				return err
			}
			printer.PrintError("ACTION FAILED", err)
			failed++
			continue
		}

		if out.AnalysisErr != nil {
			printer.PrintError("ANALYSIS FAILED", out.AnalysisErr)
		} else {
			printer.PrintAnalysis(out.Analysis)
		}
		if out.TailoringErr != nil {
			printer.PrintError("TAILORING FAILED", out.TailoringErr)
			printer.PrintOriginalCV(out.DisplayCV)
		} else {
			printer.PrintTailoredCV(out.Tailored, out.Stats)
		}
		if !out.Succeeded() {
			failed++
		}
	}

	printer.PrintHistory(sess.History().Entries())

	if failed == len(jobs) {
		return fmt.Errorf("no job could be analyzed")
	}
	return nil
}

// collectJobs gathers every job given on the command line. Scrape failures are printed and
// skipped so the remaining jobs still run; they only abort when nothing else is left.
func collectJobs(ctx context.Context, cfg *config.Config, printer *observability.Printer) ([]*ingestion.JobDescription, error) {
	var jobs []*ingestion.JobDescription
	for _, text := range analyzeJobTexts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		jobs = append(jobs, ingestion.FromText(text))
	}
	for _, path := range analyzeJobFiles {
		job, err := ingestion.JobFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read job file %s: %w", path, err)
		}
		if strings.TrimSpace(job.Text) == "" {
			continue
		}
		jobs = append(jobs, job)
	}

	var scrapeErrs []error
	opts := jobOptions(cfg, fetch.NewCache(0))
	for _, url := range analyzeJobURLs {
		job, err := ingestion.FromURL(ctx, url, opts)
		if err != nil {
			if !ingestion.IsScrapeError(err) {
				return nil, err
			}
			printer.PrintError("JOB FETCH FAILED", withManualHint(err))
			scrapeErrs = append(scrapeErrs, err)
			continue
		}
		jobs = append(jobs, job)
	}

	if len(jobs) == 0 {
		if len(scrapeErrs) > 0 {
			return nil, withManualHint(errors.Join(scrapeErrs...))
		}
		return nil, workflow.ErrNoJobDescription
	}
	return jobs, nil
}
