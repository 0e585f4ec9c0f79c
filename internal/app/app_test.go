package app

import (
	"context"
	"io"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/mail"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/queue"
)

func quiet() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func TestOpenMemory(t *testing.T) {
	a, err := Open(context.Background(), config.Test(), quiet(), true)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Services.Auth)
	assert.IsType(t, queue.NoopPublisher{}, a.Publisher)
}

func TestOpenRejectsUnknownStore(t *testing.T) {
	cfg := config.Test()
	cfg.Store = "postgres"
	_, err := Open(context.Background(), cfg, quiet(), false)
	assert.Error(t, err)
}

func TestNewSender(t *testing.T) {
	cfg := config.Test()

	s, err := NewSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, &mail.ConsoleSender{}, s)

	cfg.MailDriver = "sendgrid"
	_, err = NewSender(cfg)
	assert.Error(t, err)

	cfg.SendgridAPIKey = "SG.key"
	s, err = NewSender(cfg)
	require.NoError(t, err)
	assert.IsType(t, &mail.SendgridSender{}, s)

	cfg.MailDriver = "pigeon"
	_, err = NewSender(cfg)
	assert.Error(t, err)
}
