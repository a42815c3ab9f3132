package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shandysiswandi/otpbite/internal/pkg/clock"
	"github.com/shandysiswandi/otpbite/internal/pkg/config"
	"github.com/shandysiswandi/otpbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/kvstore"
	"github.com/shandysiswandi/otpbite/internal/pkg/mail"
	"github.com/shandysiswandi/otpbite/internal/pkg/messaging"
	"github.com/shandysiswandi/otpbite/internal/pkg/otp"
	"github.com/shandysiswandi/otpbite/internal/pkg/router"
	"github.com/shandysiswandi/otpbite/internal/pkg/uid"
	"github.com/shandysiswandi/otpbite/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	otp       otp.Generator

	// resources
	dbConn    *pgxpool.Pool
	store     kvstore.Store
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Publisher

	// server
	rateLimit  *router.RateLimiter
	router     *router.Router
	httpServer *http.Server

	// released in reverse order by Stop
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New loads the configuration file and wires the application. Any failure
// terminates the process.
func New() *App {
	//nolint:errcheck // .env is optional
	godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	app, err := NewWithConfig(cfg)
	if err != nil {
		slog.Error("failed to init application", "error", err)
		os.Exit(1)
	}

	return app
}

// NewWithConfig wires the application from an already loaded configuration.
// Resources opened before a failing step are released before returning.
func NewWithConfig(cfg config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
		config: cfg,
	}
	app.addCloser("Config", func(context.Context) error { return cfg.Close() })

	steps := []struct {
		name string
		fn   func() error
	}{
		{name: "instrument", fn: app.initInstrument},
		{name: "libraries", fn: app.initLibraries},
		{name: "database", fn: app.initDatabase},
		{name: "cache", fn: app.initCache},
		{name: "mail", fn: app.initMail},
		{name: "messaging", fn: app.initMessaging},
		{name: "http server", fn: app.initHTTPServer},
		{name: "modules", fn: app.initModules},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			cancel()
			app.closeResources(context.Background())
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
	}

	return app, nil
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

func (a *App) closeResources(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", c.name, "error", err)
		}
	}
	a.closers = nil
}
