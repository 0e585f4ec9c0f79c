// Package app wires configuration into a ready store and service set. Both
// the HTTP server and the admin CLI start from here.
package app

import (
	"context"
	"database/sql"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/mail"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/queue"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/repository"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/repository/memory"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/utils"
)

// App is an opened store plus the services built on it.
type App struct {
	Cfg       config.Config
	Store     store.Store
	Services  *service.Services
	Publisher queue.Publisher

	db *sql.DB
}

// Open connects the configured store, applies migrations when migrate is
// set, and builds the services.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger, migrate bool) (*App, error) {
	a := &App{Cfg: cfg}
	switch cfg.Store {
	case "memory":
		a.Store = memory.New()
	case "mysql", "":
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, errors.Wrap(err, "open mysql")
		}
		if migrate {
			if err := database.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, errors.Wrap(err, "migrate")
			}
		}
		a.db = db
		a.Store = repository.NewStore(db)
	default:
		return nil, errors.Errorf("unknown STORE %q", cfg.Store)
	}

	a.Publisher = queue.NoopPublisher{}
	if cfg.QueueEnabled {
		a.Publisher = queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.NewLogger("publisher"))
	}

	sender, err := NewSender(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Services = service.New(service.Deps{
		Store:     a.Store,
		Mailer:    mail.NewMailer(sender, cfg.FrontendURL),
		Hasher:    utils.Hasher{Cost: cfg.BcryptCost},
		Publisher: a.Publisher,
		Config:    cfg,
	})
	logger.Infof("store=%s mail=%s queue=%t", cfg.Store, cfg.MailDriver, cfg.QueueEnabled)
	return a, nil
}

// NewSender picks the mail transport named by MAIL_DRIVER.
func NewSender(cfg config.Config) (mail.Sender, error) {
	switch cfg.MailDriver {
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, errors.New("MAIL_DRIVER=sendgrid needs SENDGRID_API_KEY")
		}
		return mail.NewSendgridSender(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFrom), nil
	case "console", "":
		return mail.NewConsoleSender(cfg.MailFrom, os.Stdout), nil
	}
	return nil, errors.Errorf("unknown MAIL_DRIVER %q", cfg.MailDriver)
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
