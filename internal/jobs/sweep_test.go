package jobs

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSweeper) SweepExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 2, s.err
}

func (s *countingSweeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

// drive feeds one tick per clock value through Run.
func drive(j *TokenSweep, clock []time.Time) {
	ticks := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		j.Run(context.Background(), ticks)
		close(done)
	}()
	for _, now := range clock {
		ticks <- now
	}
	close(ticks)
	<-done
}

func TestTokenSweepFiresOncePerDay(t *testing.T) {
	s := &countingSweeper{}
	j := NewTokenSweep(s, 3, 0, quietLogger())

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	drive(j, []time.Time{
		day.Add(2*time.Hour + 59*time.Minute),
		day.Add(3 * time.Hour),
		day.Add(3*time.Hour + 30*time.Second), // same slot again
		day.Add(3*time.Hour + time.Minute),
		day.AddDate(0, 0, 1).Add(3 * time.Hour),
	})
	assert.Equal(t, 2, s.count())
}

func TestTokenSweepErrorDoesNotStop(t *testing.T) {
	s := &countingSweeper{err: errors.New("db down")}
	j := NewTokenSweep(s, 0, 15, quietLogger())

	day := time.Date(2025, 3, 3, 0, 15, 0, 0, time.UTC)
	drive(j, []time.Time{day, day.AddDate(0, 0, 1)})
	assert.Equal(t, 2, s.count())
}

func TestRunStopsOnCancel(t *testing.T) {
	j := NewTokenSweep(&countingSweeper{}, 3, 0, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx, make(chan time.Time))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
