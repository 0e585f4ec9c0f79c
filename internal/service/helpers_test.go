package service

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/mail"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/queue"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/repository/memory"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/utils"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	svc    *Services
	st     *memory.Store
	sender *mail.ConsoleSender
	pub    *queue.Recorder
	clock  *fakeClock
	cfg    config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Test()
	h := &harness{
		st:     memory.New(),
		sender: mail.NewConsoleSender(cfg.MailFrom, io.Discard),
		pub:    &queue.Recorder{},
		clock:  &fakeClock{t: time.Now().UTC()},
		cfg:    cfg,
	}
	h.svc = h.servicesOn(h.st)
	return h
}

// servicesOn builds services sharing the harness clock, mail and queue but
// running against st.
func (h *harness) servicesOn(st store.Store) *Services {
	return New(Deps{
		Store:     st,
		Mailer:    mail.NewMailer(h.sender, h.cfg.FrontendURL),
		Hasher:    utils.Hasher{Cost: h.cfg.BcryptCost},
		Publisher: h.pub,
		Config:    h.cfg,
		Now:       h.clock.Now,
	})
}

var tokenRe = regexp.MustCompile(`token=(\S+)`)

// lastToken extracts the token from the link in the most recent email.
func (h *harness) lastToken(t *testing.T) string {
	t.Helper()
	msg, ok := h.sender.Last()
	require.True(t, ok, "no email sent")
	m := tokenRe.FindStringSubmatch(msg.TextContent)
	require.Len(t, m, 2)
	raw, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return raw
}

// user creates an activated user with the given role and a schedule.
func (h *harness) user(t *testing.T, name string, role model.Role) model.User {
	t.Helper()
	ctx := context.Background()
	u, err := h.svc.Auth.Register(ctx, RegisterInput{Username: name, Email: name + "@example.com", Password: "secret-" + name})
	require.NoError(t, err)
	_, err = h.svc.Tokens.Activate(ctx, h.lastToken(t))
	require.NoError(t, err)
	if role != model.RoleUser {
		u, err = h.svc.Users.SetRole(ctx, u.ID, role)
		require.NoError(t, err)
	}
	u.Activated = true
	return u
}

func actorOf(u model.User) Actor { return Actor{ID: u.ID, Role: u.Role} }

// approvedCourse creates and approves a course supervised by sup.
func (h *harness) approvedCourse(t *testing.T, sup model.User, shortcut string, capacity uint32, autoregister bool) model.Course {
	t.Helper()
	ctx := context.Background()
	c, err := h.svc.Approvals.CreateCourse(ctx, actorOf(sup), CourseInput{
		Name:           "Course " + shortcut,
		Shortcut:       shortcut,
		CompletionType: model.CompletionExam,
		Capacity:       capacity,
		Autoregister:   autoregister,
	})
	require.NoError(t, err)
	c, err = h.svc.Approvals.ApproveCourse(ctx, c.ID)
	require.NoError(t, err)
	return c
}

func (h *harness) scheduleItemCount(t *testing.T, scheduleID uint64) int {
	t.Helper()
	items, err := h.st.Schedules().ItemsBetween(context.Background(), scheduleID,
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return len(items)
}
