package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpbite/internal/pkg/clock"
	"github.com/shandysiswandi/otpbite/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpbite/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpbite/internal/pkg/instrument"
	"github.com/shandysiswandi/otpbite/internal/pkg/kvstore"
	"github.com/shandysiswandi/otpbite/internal/pkg/mail"
	"github.com/shandysiswandi/otpbite/internal/pkg/messaging"
	"github.com/shandysiswandi/otpbite/internal/pkg/otp"
	"github.com/shandysiswandi/otpbite/internal/pkg/postgres"
	"github.com/shandysiswandi/otpbite/internal/pkg/router"
	"github.com/shandysiswandi/otpbite/internal/pkg/uid"
	"github.com/shandysiswandi/otpbite/internal/pkg/validator"
	"github.com/shandysiswandi/otpbite/migrations"
)

func (a *App) initInstrument() error {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		Log: instrument.LogConfig{
			Level:      a.config.GetString("instrument.log_level"),
			MaskFields: a.config.GetArray("instrument.log_mask_fields"),
		},
	})
	if err != nil {
		return err
	}

	a.ins = ins
	a.addCloser("Instrument", ins.Shutdown)
	return nil
}

func (a *App) initLibraries() error {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.otp = otp.NewNumeric()
	a.goroutine = goroutine.NewManager(
		a.config.GetInt("app.server.max_goroutine"),
		a.config.GetSecond("app.server.goroutine_timeout_seconds"),
	)

	v, err := validator.NewV10Validator()
	if err != nil {
		return err
	}
	a.validator = v

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		return err
	}
	a.uid = snow

	return nil
}

// initDatabase is skipped when database.url is empty; only the email
// delivery log needs postgres.
func (a *App) initDatabase() error {
	dsn := strings.TrimSpace(a.config.GetString("database.url"))
	if dsn == "" {
		slog.Warn("database.url is empty, email delivery log is disabled")
		return nil
	}

	if a.config.GetBool("database.auto_migrate") {
		if err := postgres.Migrate(dsn, migrations.FS); err != nil {
			return err
		}
	}

	pool, err := postgres.Connect(a.ctx, postgres.Config{
		DSN:          dsn,
		MaxConns:     int32(a.config.GetInt("database.pool.max_conns")), //nolint:gosec // small config value
		PingAttempts: uint64(max(a.config.GetInt("database.ping_attempts"), 0)),
		PingInterval: a.config.GetMillisecond("database.ping_interval_ms"),
	})
	if err != nil {
		return err
	}

	a.dbConn = pool
	a.addCloser("Database", func(context.Context) error {
		pool.Close()
		return nil
	})
	return nil
}

func (a *App) initCache() error {
	store, err := kvstore.NewFromDriver(a.config.GetString("cache.driver"), a.config.GetString("redis.url"))
	if err != nil {
		return err
	}
	a.addCloser("KVStore", func(context.Context) error { return store.Close() })

	backoff := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	if err := retry.Do(a.ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			slog.WarnContext(ctx, "kv store not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		return err
	}

	a.store = store
	a.idemp = idempotency.New(store, a.config.GetString("idempotency.prefix"))
	return nil
}

func (a *App) initMail() error {
	m, err := mail.NewFromDriver(mail.Config{
		Driver: a.config.GetString("mail.driver"),
		From:   a.config.GetString("mail.from"),
		SMTP: mail.SMTPConfig{
			Host:               a.config.GetString("mail.smtp.host"),
			Port:               a.config.GetInt("mail.smtp.port"),
			Username:           a.config.GetString("mail.smtp.username"),
			Password:           a.config.GetString("mail.smtp.password"),
			MessageIDDomain:    a.config.GetString("mail.smtp.message_id_domain"),
			InsecureSkipVerify: a.config.GetBool("mail.smtp.insecure_skip_verify"),
		},
		Resend: mail.ResendConfig{
			APIKey: a.config.GetString("mail.resend.api_key"),
		},
		Mailgun: mail.MailgunConfig{
			Domain: a.config.GetString("mail.mailgun.domain"),
			APIKey: a.config.GetString("mail.mailgun.api_key"),
			EU:     a.config.GetBool("mail.mailgun.eu"),
		},
	})
	if err != nil {
		return err
	}

	a.mail = m
	a.addCloser("Mail", func(context.Context) error { return m.Close() })
	return nil
}

func (a *App) initMessaging() error {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:         a.config.GetArray("messaging.kafka.brokers"),
			BatchTimeout:    a.config.GetMillisecond("messaging.kafka.batch_timeout_ms"),
			AutoCreateTopic: a.config.GetBool("messaging.kafka.auto_create_topic"),
		},
		NATS: messaging.NATSConfig{
			URL:  a.config.GetString("messaging.nats.url"),
			Name: a.config.GetString("messaging.nats.name"),
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:       a.config.GetString("messaging.pubsub.project_id"),
			CredentialsFile: a.config.GetString("messaging.pubsub.credentials_file"),
			Endpoint:        a.config.GetString("messaging.pubsub.endpoint"),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		return err
	}

	a.messaging = client
	a.addCloser("Messaging", func(context.Context) error { return client.Close() })
	return nil
}

func (a *App) initHTTPServer() error {
	if rps := a.config.GetFloat64("app.server.rate_limit.rps"); rps > 0 {
		a.rateLimit = router.NewRateLimiter(
			rps,
			a.config.GetInt("app.server.rate_limit.burst"),
			a.config.GetSecond("app.server.rate_limit.idle_seconds"),
		)
		a.addCloser("RateLimiter", func(context.Context) error {
			a.rateLimit.Stop()
			return nil
		})
	}

	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
		RateLimit:  a.rateLimit,
	})
	a.router.GET("/health", healthHandler(a.store))

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(a.router)

	addr := a.config.GetString("app.server.http.address")
	if addr == "" {
		return errors.New("app.server.http.address is required")
	}

	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}

	return nil
}
