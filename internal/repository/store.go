package repository

import (
	"context"
	"database/sql"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

// Store is the MySQL implementation of store.Store.
type Store struct {
	db *sql.DB
	ex database.Executor
}

var _ store.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store { return &Store{db: db, ex: db} }

func (s *Store) Users() store.UserRepository                 { return &UserRepo{ex: s.ex} }
func (s *Store) LinkTokens() store.LinkTokenRepository       { return &LinkTokenRepo{ex: s.ex} }
func (s *Store) RefreshTokens() store.RefreshTokenRepository { return &TokenRepo{ex: s.ex} }
func (s *Store) Courses() store.CourseRepository             { return &CourseRepo{ex: s.ex} }
func (s *Store) Terms() store.TermRepository                 { return &TermRepo{ex: s.ex} }
func (s *Store) Rooms() store.RoomRepository                 { return &RoomRepo{ex: s.ex} }
func (s *Store) Schedules() store.ScheduleRepository         { return &ScheduleRepo{ex: s.ex} }
func (s *Store) Notifications() store.NotificationRepository { return &NotificationRepo{ex: s.ex} }

// InTx begins a transaction, hands fn a Store bound to it and commits when fn
// returns nil. Calls nested inside an open transaction reuse it.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if _, nested := s.ex.(*sql.Tx); nested {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&Store{db: s.db, ex: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Internal(err, "commit transaction")
	}
	committed = true
	return nil
}
