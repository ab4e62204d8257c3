package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/ingestion"
)

var extractCVCmd = &cobra.Command{
	Use:   "extract-cv",
	Short: "Extract plain text from a CV file",
	Long:  "Extract the text of a PDF, DOCX or plain-text CV exactly as the analysis would see it.",
	RunE:  runExtractCV,
}

var (
	extractCVPath string
	extractCVOut  string
)

func init() {
	extractCVCmd.Flags().StringVar(&extractCVPath, "cv", "", "Path to the CV file (.pdf, .docx or .txt)")
	extractCVCmd.Flags().StringVarP(&extractCVOut, "out", "o", "", "Write the text to this file instead of stdout")

	_ = extractCVCmd.MarkFlagRequired("cv")

	rootCmd.AddCommand(extractCVCmd)
}

// readCV loads and extracts a CV file.
func readCV(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("CV file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read CV file: %w", err)
	}
	return ingestion.ExtractCV(filepath.Base(path), data)
}

func runExtractCV(cmd *cobra.Command, _ []string) error {
	text, err := readCV(extractCVPath)
	if err != nil {
		return err
	}

	if extractCVOut != "" {
		if err := os.WriteFile(extractCVOut, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d characters to %s\n", len([]rune(text)), extractCVOut)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
