package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/fetch"
	"github.com/jonathan/career-assistant/internal/server"
)

var (
	servePort     int
	serveSettings settingsFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes session, CV, job fetch and analysis endpoints.
Sessions may bring their own API key; the key resolved at startup is used for sessions that do not.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveSettings.register(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

// buildServer turns resolved settings into a server without starting it.
func buildServer(cmd *cobra.Command) (*server.Server, error) {
	cfg, err := serveSettings.load(cmd)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiKey, err := config.ResolveAPIKey(serveSettings.apiKey, &cfg)
	if err != nil {
		log.Printf("No default API key configured; each session must set its own")
		apiKey = ""
	}

	runner, err := newRunner(&cfg)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		APIKey:     apiKey,
		SessionTTL: cfg.SessionTTL(),
		Runner:     runner,
		JobOptions: jobOptions(&cfg, fetch.NewCache(0)),
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv, err := buildServer(cmd)
	if err != nil {
		return err
	}
	return srv.Start()
}
