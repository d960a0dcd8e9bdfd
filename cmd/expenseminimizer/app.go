package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"expenseminimizer/internal/advisor"
	"expenseminimizer/internal/backend"
	"expenseminimizer/internal/cli"
	"expenseminimizer/internal/config"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/prompt"
	"expenseminimizer/internal/session"
	"expenseminimizer/internal/sheets"
	"expenseminimizer/internal/sheets/google"
	"expenseminimizer/internal/storage"
)

var errExportNotConfigured = errors.New("sheet export not configured (set GOOGLE_SPREADSHEET_ID and GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")

// app carries what the commands need. The constructors are fields so tests
// can swap in in-memory implementations.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
	in     io.Reader
	now    func() time.Time

	openStore   func(ctx context.Context) (storage.Store, error)
	newAdvisor  func() (session.Advisor, error)
	newExporter func(ctx context.Context) (sheets.Exporter, error)
}

func newApp(out io.Writer, in io.Reader) (*app, error) {
	if err := cli.LoadEnvFile(); err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentCLI, os.Stderr)
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, out: out, in: in, now: time.Now}
	a.openStore = a.openConfiguredStore
	a.newAdvisor = a.configuredAdvisor
	a.newExporter = a.configuredExporter
	return a, nil
}

func (a *app) openConfiguredStore(ctx context.Context) (storage.Store, error) {
	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(a.logger.WithComponent(log.ComponentStorage).Logger).Open(ctx, bcfg)
}

// configuredAdvisor goes through the proxy when PROXY_URL is set and calls
// the provider directly otherwise.
func (a *app) configuredAdvisor() (session.Advisor, error) {
	if a.cfg.ProxyURL != "" {
		p, err := advisor.NewProxyClient(a.cfg.ProxyURL, nil)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	client, err := advisor.NewClient(advisor.Config{
		APIKey:      a.cfg.OpenAIAPIKey,
		Endpoint:    a.cfg.OpenAIAPIURL,
		Model:       a.cfg.OpenAIModel,
		Temperature: a.cfg.OpenAITemperature,
		Timeout:     a.cfg.UpstreamTimeout,
	})
	if err != nil {
		return nil, err
	}
	return advisor.Direct{Builder: prompt.Builder{}, Client: client}, nil
}

func (a *app) configuredExporter(ctx context.Context) (sheets.Exporter, error) {
	if !a.cfg.SheetsConfigured() {
		return nil, errExportNotConfigured
	}
	return google.New(ctx, google.Config{
		SpreadsheetID:   a.cfg.GoogleSpreadsheetID,
		SheetName:       a.cfg.GoogleSheetName,
		CredentialsJSON: a.cfg.GoogleCredentialsJSON,
		CredentialsFile: a.cfg.GoogleCredentialsFile,
	}, a.logger)
}

// openSession opens the store and loads the session. withAdvisor is false
// for commands that never chat, so they work without provider settings.
func (a *app) openSession(ctx context.Context, withAdvisor bool) (*session.Session, storage.Store, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	var adv session.Advisor
	if withAdvisor {
		if adv, err = a.newAdvisor(); err != nil {
			store.Close()
			return nil, nil, err
		}
	}
	s, err := session.New(ctx, store, adv, a.logger.WithComponent(log.ComponentSession))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return s, store, nil
}
