package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/clients/gmailclient"
	"github.com/jakechorley/editor-points/pkg/clients/sheetsclient"
	"github.com/jakechorley/editor-points/pkg/clients/trackerclient"
	"github.com/jakechorley/editor-points/pkg/db"
	"github.com/jakechorley/editor-points/pkg/metrics"
	"github.com/jakechorley/editor-points/pkg/postgres"
	"github.com/jakechorley/editor-points/pkg/sqlite"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env     string
	Cfg     *config.Config
	Tracker *trackerclient.Client
	Metrics *metrics.Recorder
	Logger  *zap.Logger
	Ctx     context.Context

	// OpenStore connects to the report database; defaults to OpenDatabase
	OpenStore func(ctx context.Context, cfg config.DatabaseConfig) (db.Database, error)

	database     db.Database
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// Database returns the report store, connecting on first use.
// Preview runs never store anything so they never need a connection.
func (app *AppContext) Database() (db.Database, error) {
	if app.database != nil {
		return app.database, nil
	}

	open := app.OpenStore
	if open == nil {
		open = OpenDatabase
	}

	app.Logger.Info("Connecting to database", zap.String("driver", app.Cfg.Database.Driver))
	database, err := open(app.Ctx, app.Cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.Logger.Info("Database initialized successfully")

	app.database = database
	return app.database, nil
}

// CloseDatabase closes the report store if one was opened
func (app *AppContext) CloseDatabase() error {
	if app.database == nil {
		return nil
	}
	err := app.database.Close()
	app.database = nil
	return err
}

// OpenDatabase connects to the store named by the configured driver
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (db.Database, error) {
	switch cfg.Driver {
	case "postgres":
		pg, err := postgres.NewDB(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "sqlite":
		lite, err := sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SheetsClient returns the Sheets client, authenticating on first use.
// Only publishing needs Google access so the OAuth flow is deferred until then.
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client

	// The gmail client shares the sheets token
	app.Logger.Info("Initializing gmail client")
	app.gmailClient, err = gmailclient.NewClient(app.Ctx, oauthCfg, client.Token(), app.Cfg.GmailUserID, app.Cfg.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}

	return app.sheetsClient, nil
}

// GmailClient returns the Gmail client, authenticating on first use
func (app *AppContext) GmailClient() (*gmailclient.Client, error) {
	if app.gmailClient == nil {
		if _, err := app.SheetsClient(); err != nil {
			return nil, err
		}
	}
	return app.gmailClient, nil
}
