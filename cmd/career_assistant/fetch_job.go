package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/ingestion"
)

var fetchJobCmd = &cobra.Command{
	Use:   "fetch-job",
	Short: "Fetch a job posting from a URL",
	Long:  "Fetch a job posting, extract its readable text, and print it or write it with metadata to a directory.",
	RunE:  runFetchJob,
}

var (
	fetchJobURL      string
	fetchJobOut      string
	fetchJobSettings settingsFlags
)

func init() {
	fetchJobCmd.Flags().StringVarP(&fetchJobURL, "url", "u", "", "URL of the job posting")
	fetchJobCmd.Flags().StringVarP(&fetchJobOut, "out", "o", "", "Output directory for job_posting.txt and job_posting.meta.json")
	fetchJobSettings.register(fetchJobCmd)

	_ = fetchJobCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(fetchJobCmd)
}

func runFetchJob(cmd *cobra.Command, _ []string) error {
	cfg, err := fetchJobSettings.load(cmd)
	if err != nil {
		return err
	}

	job, err := ingestion.FromURL(cmd.Context(), fetchJobURL, jobOptions(&cfg, nil))
	if err != nil {
		return withManualHint(err)
	}

	if fetchJobOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), job.Text)
		return nil
	}

	if err := writeJob(fetchJobOut, job); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully fetched job posting\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Text: %s\n", filepath.Join(fetchJobOut, "job_posting.txt"))
	fmt.Fprintf(cmd.OutOrStdout(), "Metadata: %s\n", filepath.Join(fetchJobOut, "job_posting.meta.json"))
	return nil
}

func writeJob(dir string, job *ingestion.JobDescription) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "job_posting.txt"), []byte(job.Text), 0o644); err != nil {
		return err
	}
	meta, err := job.Metadata.ToJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "job_posting.meta.json"), meta, 0o644)
}

// withManualHint tells the user how to supply a posting that could not be scraped.
func withManualHint(err error) error {
	if !ingestion.IsScrapeError(err) {
		return err
	}
	return fmt.Errorf("%w (pass the text with --job-text or --job-file)", err)
}
