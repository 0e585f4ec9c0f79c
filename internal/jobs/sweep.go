// Package jobs holds the background tasks that run beside the HTTP server.
package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

// Sweeper deletes expired refresh tokens and reports how many went.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// TokenSweep runs the refresh-token sweep once a day at Hour:Minute UTC.
// It checks the wall clock every minute; a day whose slot has already
// fired is skipped, so a late or duplicate tick never sweeps twice.
type TokenSweep struct {
	Sweeper Sweeper
	Hour    int
	Minute  int
	Timeout time.Duration
	Logger  *log.Logger

	lastRun time.Time
}

func NewTokenSweep(s Sweeper, hour, minute int, logger *log.Logger) *TokenSweep {
	return &TokenSweep{
		Sweeper: s,
		Hour:    hour,
		Minute:  minute,
		Timeout: 30 * time.Second,
		Logger:  logger,
	}
}

// Start launches the job on a one minute ticker until ctx is done.
func (j *TokenSweep) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		j.Run(ctx, ticker.C)
	}()
	j.Logger.Infof("token sweep scheduled daily at %02d:%02d UTC", j.Hour, j.Minute)
}

// Run consumes ticks until ctx is done or ticks is closed. Each tick value
// is taken as the current time.
func (j *TokenSweep) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-ticks:
			if !ok {
				return
			}
			j.tick(ctx, now.UTC())
		}
	}
}

func (j *TokenSweep) tick(ctx context.Context, now time.Time) {
	if now.Hour() != j.Hour || now.Minute() != j.Minute || sameDay(now, j.lastRun) {
		return
	}
	j.lastRun = now
	n, err := j.Once(ctx)
	if err != nil {
		j.Logger.Errorf("token sweep: %v", err)
		return
	}
	j.Logger.Infof("token sweep removed %d expired refresh tokens", n)
}

// Once runs a single sweep with the job timeout.
func (j *TokenSweep) Once(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()
	return j.Sweeper.SweepExpired(ctx)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
