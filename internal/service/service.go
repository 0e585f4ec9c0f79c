// Package service holds the business operations behind the HTTP handlers.
// Services depend on store.Store only, so the same code runs against MySQL
// and the in-memory store. Every operation that writes more than one row
// runs inside Store.InTx.
package service

import (
	"context"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/queue"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	ID   uint64
	Role model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// Mailer builds emailed links and sends the account emails.
type Mailer interface {
	ActivationLink(token string) string
	PasswordResetLink(token string) string
	SendActivationEmail(ctx context.Context, to, username, link string) error
	SendPasswordResetMail(ctx context.Context, to, link string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type Deps struct {
	Store     store.Store
	Mailer    Mailer
	Hasher    PasswordHasher
	Publisher queue.Publisher
	Config    config.Config
	// Now defaults to the UTC wall clock.
	Now func() time.Time
}

// Services is the set of services wired from one Deps.
type Services struct {
	Tokens        *TokenService
	Auth          *AuthService
	Approvals     *ApprovalService
	Courses       *CourseService
	Terms         *TermService
	Schedules     *ScheduleService
	Notifications *NotificationService
	Users         *UserService
	Rooms         *RoomService
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Publisher == nil {
		d.Publisher = queue.NoopPublisher{}
	}
	tokens := &TokenService{st: d.Store, mailer: d.Mailer, hasher: d.Hasher, cfg: d.Config, now: d.Now}
	schedules := &ScheduleService{st: d.Store, now: d.Now}
	return &Services{
		Tokens:        tokens,
		Auth:          &AuthService{st: d.Store, tokens: tokens, hasher: d.Hasher, cfg: d.Config, now: d.Now},
		Approvals:     &ApprovalService{st: d.Store, now: d.Now},
		Courses:       &CourseService{st: d.Store},
		Terms:         &TermService{st: d.Store, schedules: schedules},
		Schedules:     schedules,
		Notifications: &NotificationService{st: d.Store, publisher: d.Publisher, now: d.Now},
		Users:         &UserService{st: d.Store},
		Rooms:         &RoomService{st: d.Store},
	}
}

// dedupeIDs keeps the first occurrence of every id.
func dedupeIDs(in []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(in))
	out := make([]uint64, 0, len(in))
	for _, id := range in {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
