package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskdesk/internal/client/asset"
	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/config"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/taskdesk/internal/client/services"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

// Streams are the standard streams of a command.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App holds the wired services of one CLI invocation.
type App struct {
	config *config.Config
	log    logging.Logger
	tasks  services.TaskService
	status services.StatusService
	reader *bufio.Reader
	out    io.Writer

	// interactive enables prompts for missing input.
	interactive bool
	db          *sql.DB
}

// Builder constructs the App for a command. Tests substitute fakes.
type Builder func(ctx context.Context, cfg *config.Config, s Streams) (*App, error)

// NewApp wires the API client, the asset uploader and the upload journal
// described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, s Streams) (*App, error) {
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, s.Err)
	if err != nil {
		return nil, err
	}

	api := client.NewHTTPClient(cfg.API.BaseURL,
		client.WithToken(cfg.API.Token),
		client.WithTimeout(cfg.API.Timeout))

	uploader, uploadErr := newUploader(ctx, cfg)
	if uploadErr != nil {
		// Only submit needs an uploader; it reports this error when used.
		log.Debug(ctx, "asset uploader unavailable", "error", uploadErr)
		uploader = asset.UploaderFunc(func(context.Context, models.PendingFile) (string, error) {
			return "", uploadErr
		})
	}

	app := &App{
		config:      cfg,
		log:         log,
		reader:      bufio.NewReader(s.In),
		out:         s.Out,
		interactive: stdinIsTerminal(),
	}

	opts := []services.Option{
		services.WithLogger(log),
		services.WithConcurrency(cfg.Upload.Concurrency),
	}

	var journal uploads.Repository
	if cfg.Journal.Driver != "" {
		db, dialect, err := client.InitDatabase(ctx, cfg.Journal.Driver, cfg.Journal.DSN)
		if err != nil {
			log.Warn(ctx, "upload journal disabled", "error", err)
		} else {
			app.db = db
			journal = uploads.NewSQLRepository(db, dialect)
			opts = append(opts, services.WithJournal(journal))
		}
	}

	app.tasks = services.NewTaskService(api, uploader, opts...)
	app.status = services.NewStatusService(api, journal)
	return app, nil
}

func newUploader(ctx context.Context, cfg *config.Config) (asset.Uploader, error) {
	if err := cfg.ValidateAssets(); err != nil {
		return nil, err
	}

	switch cfg.Asset.Provider {
	case config.ProviderS3:
		s3c, err := asset.NewS3Client(ctx, asset.S3Settings{
			Endpoint:      cfg.Asset.S3.Endpoint,
			Region:        cfg.Asset.S3.Region,
			Bucket:        cfg.Asset.S3.Bucket,
			AccessKey:     cfg.Asset.S3.AccessKey,
			SecretKey:     cfg.Asset.S3.SecretKey,
			PublicBaseURL: cfg.Asset.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		u, err := asset.NewS3Uploader(s3c, cfg.Asset.S3.Bucket, cfg.Asset.S3.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return u, nil
	case config.ProviderCloudinary:
		u, err := asset.NewCloudinaryUploader(cfg.Asset.CloudName, cfg.Asset.UploadPreset,
			asset.WithBaseURL(cfg.Asset.BaseURL),
			asset.WithResourceType(cfg.Asset.ResourceType),
			asset.WithTimeout(cfg.Asset.Timeout))
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, fmt.Errorf("unknown asset provider %q", cfg.Asset.Provider)
}

// Close releases the journal database.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// displayError is an error whose text is the message shown to the user.
type displayError struct{ err error }

func (e *displayError) Error() string { return common.Message(e.err) }
func (e *displayError) Unwrap() error { return e.err }

// fail logs the full error chain and returns err with its user-facing text.
func (a *App) fail(ctx context.Context, op string, err error) error {
	a.log.Debug(ctx, op+" failed", "error", err)
	return &displayError{err: err}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
