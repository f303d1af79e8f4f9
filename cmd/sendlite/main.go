// Command sendlite is a terminal client for a SendGrid-Lite campaign
// service: contact management, address validation, and quick sends.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/sendlite/internal/api"
	"github.com/nhle/sendlite/internal/app"
	"github.com/nhle/sendlite/internal/compose"
	"github.com/nhle/sendlite/internal/credential"
	"github.com/nhle/sendlite/internal/directory"
	"github.com/nhle/sendlite/internal/logging"
	"github.com/nhle/sendlite/internal/model"
	"github.com/nhle/sendlite/internal/session"
	"github.com/nhle/sendlite/internal/store"
	"github.com/nhle/sendlite/internal/validation"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "sendlite: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if key := os.Getenv("SENDLITE_API_KEY"); key != "" {
		cfg.Server.APIKey = key
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer log.Sync()

	sessions := session.New(credential.SessionStorage{}, log)

	client := api.NewClient(cfg.Server.BaseURL, cfg.Server.APIKey, sessions.Token, log)

	snapshot, err := store.NewSQLiteStore(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("opening contact cache: %w", err)
	}
	defer snapshot.Close()

	dir := directory.New(client, snapshot, log)
	orchestrator := validation.New(client, dir, log)
	resolver := compose.New(dir, orchestrator, log)

	exportDir := filepath.Join(filepath.Dir(cfg.CachePath), "exports")

	root := app.New(sessions, client, dir, orchestrator, resolver, exportDir, log)
	p := tea.NewProgram(root, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
