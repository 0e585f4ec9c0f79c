// Package memory implements store.Store in process. It backs STORE=memory
// for local development and the service and handler tests.
//
// All tables live behind one RWMutex. Transactions are serialized: InTx
// snapshots every table, runs fn and restores the snapshot when fn fails.
// The restore covers every table, so a write made outside the transaction
// while it was open (a Logout or MarkRead from another request) is lost
// along with it. MySQL has no such gap; this store is for development and
// tests only.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/store"
)

type pair struct{ a, b uint64 }

type tables struct {
	seq map[string]uint64

	users         map[uint64]model.User
	linkTokens    map[uint64]model.LinkToken
	refreshTokens map[uint64]model.RefreshToken
	courses       map[uint64]model.Course
	enrollments   map[pair]model.StudentCourse // {course, student}
	terms         map[uint64]model.Term
	termStudents  map[pair]struct{} // {term, student}
	rooms         map[uint64]model.Room
	requests      map[uint64]model.RoomRequest
	schedules     map[uint64]model.Schedule
	items         map[uint64]model.ScheduleItem
	entries       map[pair]struct{} // {schedule, item}
	notifications map[uint64]model.Notification
}

func newTables() *tables {
	return &tables{
		seq:           map[string]uint64{},
		users:         map[uint64]model.User{},
		linkTokens:    map[uint64]model.LinkToken{},
		refreshTokens: map[uint64]model.RefreshToken{},
		courses:       map[uint64]model.Course{},
		enrollments:   map[pair]model.StudentCourse{},
		terms:         map[uint64]model.Term{},
		termStudents:  map[pair]struct{}{},
		rooms:         map[uint64]model.Room{},
		requests:      map[uint64]model.RoomRequest{},
		schedules:     map[uint64]model.Schedule{},
		items:         map[uint64]model.ScheduleItem{},
		entries:       map[pair]struct{}{},
		notifications: map[uint64]model.Notification{},
	}
}

// next hands out AUTO_INCREMENT style ids per table.
func (t *tables) next(table string) uint64 {
	t.seq[table]++
	return t.seq[table]
}

func cloneMap[K comparable, V any](m map[K]V, cp func(V) V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		if cp != nil {
			v = cp(v)
		}
		out[k] = v
	}
	return out
}

func ids(in []uint64) []uint64 {
	out := make([]uint64, len(in))
	copy(out, in)
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		seq:           cloneMap(t.seq, nil),
		users:         cloneMap(t.users, nil),
		linkTokens:    cloneMap(t.linkTokens, nil),
		refreshTokens: cloneMap(t.refreshTokens, nil),
		courses:       cloneMap(t.courses, func(c model.Course) model.Course { c.TeacherIDs = ids(c.TeacherIDs); return c }),
		enrollments:   cloneMap(t.enrollments, nil),
		terms:         cloneMap(t.terms, func(x model.Term) model.Term { x.RoomIDs = ids(x.RoomIDs); return x }),
		termStudents:  cloneMap(t.termStudents, nil),
		rooms:         cloneMap(t.rooms, func(r model.Room) model.Room { r.OccupantIDs = ids(r.OccupantIDs); return r }),
		requests:      cloneMap(t.requests, nil),
		schedules:     cloneMap(t.schedules, nil),
		items:         cloneMap(t.items, nil),
		entries:       cloneMap(t.entries, nil),
		notifications: cloneMap(t.notifications, nil),
	}
}

// DB owns the tables shared by every Store handed out for it.
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	t    *tables
}

func NewDB() *DB { return &DB{t: newTables()} }

// Store is the in-memory implementation of store.Store.
type Store struct {
	db   *DB
	inTx bool
}

var _ store.Store = (*Store)(nil)

// New returns a Store over a fresh, empty database.
func New() *Store { return &Store{db: NewDB()} }

func (s *Store) Users() store.UserRepository                 { return &userRepo{db: s.db} }
func (s *Store) LinkTokens() store.LinkTokenRepository       { return &linkTokenRepo{db: s.db} }
func (s *Store) RefreshTokens() store.RefreshTokenRepository { return &refreshTokenRepo{db: s.db} }
func (s *Store) Courses() store.CourseRepository             { return &courseRepo{db: s.db} }
func (s *Store) Terms() store.TermRepository                 { return &termRepo{db: s.db} }
func (s *Store) Rooms() store.RoomRepository                 { return &roomRepo{db: s.db} }
func (s *Store) Schedules() store.ScheduleRepository         { return &scheduleRepo{db: s.db} }
func (s *Store) Notifications() store.NotificationRepository { return &notificationRepo{db: s.db} }

func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.RLock()
	snapshot := s.db.t.clone()
	s.db.mu.RUnlock()

	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.mu.Lock()
		s.db.t = snapshot
		s.db.mu.Unlock()
		return err
	}
	return nil
}

func sortedIDs[V any](m map[uint64]V, keep func(V) bool) []uint64 {
	out := make([]uint64, 0)
	for id, v := range m {
		if keep == nil || keep(v) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
