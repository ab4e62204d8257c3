package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/analysis"
	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/fetch"
	"github.com/jonathan/career-assistant/internal/ingestion"
	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/tailoring"
	"github.com/jonathan/career-assistant/internal/workflow"
)

// newLLMFactory is replaced in tests.
var newLLMFactory = llm.NewFactory

// settingsFlags are the flags shared by every command that talks to the AI backend or fetches jobs.
type settingsFlags struct {
	configPath    string
	apiKey        string
	provider      string
	model         string
	restBaseURL   string
	aiTimeout     int
	scrapeTimeout int
	useBrowser    bool
	verbose       bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to JSON or YAML config file")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "AI API key (overrides config file and GEMINI_API_KEY)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "AI provider: gemini, genai or rest")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name for every call")
	cmd.Flags().StringVar(&f.restBaseURL, "rest-base-url", "", "Base URL for the rest provider")
	cmd.Flags().IntVar(&f.aiTimeout, "ai-timeout", 0, "Seconds allowed per AI call (default 30)")
	cmd.Flags().IntVar(&f.scrapeTimeout, "scrape-timeout", 0, "Seconds allowed for a job page fetch (default 10)")
	cmd.Flags().BoolVar(&f.useBrowser, "use-browser", false, "Retry blocked job pages with a headless browser")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// load reads the config file, applies explicitly set flags on top, then fills defaults.
func (f *settingsFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := &config.Config{}
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = f.provider
	}
	if flags.Changed("model") {
		cfg.Model = f.model
	}
	if flags.Changed("rest-base-url") {
		cfg.RESTBaseURL = f.restBaseURL
	}
	if flags.Changed("ai-timeout") {
		cfg.AITimeoutSeconds = f.aiTimeout
	}
	if flags.Changed("scrape-timeout") {
		cfg.ScrapeTimeoutSeconds = f.scrapeTimeout
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// newRunner builds a workflow runner for cfg.
func newRunner(cfg *config.Config) (*workflow.Runner, error) {
	llmConfig, err := cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	runner := workflow.NewRunner(newLLMFactory(llmConfig))
	runner.AnalyzerOptions = []analysis.Option{analysis.WithTimeout(cfg.AITimeout())}
	runner.TailorOptions = []tailoring.Option{tailoring.WithTimeout(cfg.AITimeout())}
	runner.Verbose = cfg.Verbose
	return runner, nil
}

func jobOptions(cfg *config.Config, cache *fetch.Cache) *ingestion.JobOptions {
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.ScrapeTimeout()
	return &ingestion.JobOptions{
		Fetch:          fetchOpts,
		UseBrowser:     cfg.UseBrowser,
		BrowserTimeout: 3 * cfg.ScrapeTimeout(),
		Cache:          cache,
		Verbose:        cfg.Verbose,
	}
}
