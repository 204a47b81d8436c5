package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/sushihentaime/portfolio/internal/authservice"
	"github.com/sushihentaime/portfolio/internal/blogservice"
	"github.com/sushihentaime/portfolio/internal/common"
	"github.com/sushihentaime/portfolio/internal/contactservice"
	"github.com/sushihentaime/portfolio/internal/imagehost"
	"github.com/sushihentaime/portfolio/internal/mailservice"
	"github.com/sushihentaime/portfolio/internal/photoservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	db             *sql.DB
	auth           *authservice.Gate
	loginLimiter   *authservice.LoginLimiter
	blogService    *blogservice.PostService
	photoService   *photoservice.PhotoService
	contactService *contactservice.ContactService
	mailService    *mailservice.MailService
	broker         *common.MessageBroker
	metrics        *metrics
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newApplication connects every dependency. The returned cleanup closes them again.
func newApplication(cfg *Config, logger *slog.Logger) (*application, func(), error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Migrations run once here, never per request.
	uri := cfg.DatabaseURI()
	if err := common.MigrateUp(uri); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := common.NewDB(uri, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	hash, err := cfg.adminSecretHash()
	if err != nil {
		common.CloseDB(db)
		return nil, nil, err
	}

	gate, err := authservice.NewGate(authservice.Options{
		SecretHash: hash,
		SigningKey: []byte(cfg.Auth.SessionSecret),
		TTL:        cfg.Auth.SessionTTL,
		Secure:     cfg.isProduction(),
	})
	if err != nil {
		common.CloseDB(db)
		return nil, nil, err
	}

	m := newMetrics(db)

	images, err := imagehost.New(cfg.imageHostConfig(), imagehost.WithObserver(m.observeImageHost))
	if err != nil {
		common.CloseDB(db)
		return nil, nil, err
	}

	broker, err := common.NewMessageBroker(cfg.RabbitMQURI())
	if err != nil {
		common.CloseDB(db)
		return nil, nil, fmt.Errorf("failed to connect to the message broker: %w", err)
	}

	if err := common.SetupContactExchange(broker); err != nil {
		broker.Close()
		common.CloseDB(db)
		return nil, nil, fmt.Errorf("failed to setup the contact exchange: %w", err)
	}

	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)

	app := &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		auth:           gate,
		loginLimiter:   authservice.NewLoginLimiter(cfg.Auth.LoginRateLimit),
		blogService:    blogservice.NewPostService(db, cache),
		photoService:   photoservice.NewPhotoService(db, cache, images),
		contactService: contactservice.NewContactService(broker),
		broker:         broker,
		metrics:        m,
	}

	if cfg.mailEnabled() {
		app.mailService = mailservice.NewMailService(broker, cfg.mailConfig(), logger)
	} else {
		logger.Warn("MAIL_HOST is not set, contact messages stay queued")
	}

	cleanup := func() {
		if err := broker.Close(); err != nil {
			logger.Error("failed to close the message broker", slog.String("error", err.Error()))
		}
		if err := common.CloseDB(db); err != nil {
			logger.Error("failed to close the database", slog.String("error", err.Error()))
		}
	}

	return app, cleanup, nil
}
