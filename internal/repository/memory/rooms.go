package memory

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

type roomRepo struct{ db *DB }

func (r *roomRepo) Create(_ context.Context, rm *model.Room) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.t.rooms {
		if other.Shortcut == rm.Shortcut {
			return errors.Wrap(apperr.ErrConflict, "room shortcut already taken")
		}
	}
	if rm.CreatedAt.IsZero() {
		rm.CreatedAt = time.Now().UTC()
	}
	rm.ID = r.db.t.next("rooms")
	stored := *rm
	stored.OccupantIDs = dedupe(rm.OccupantIDs)
	r.db.t.rooms[rm.ID] = stored
	return nil
}

func copyRoom(rm model.Room) model.Room {
	if rm.Kind == model.RoomOffice {
		rm.OccupantIDs = ids(rm.OccupantIDs)
	} else {
		rm.OccupantIDs = nil
	}
	return rm
}

func (r *roomRepo) GetByID(_ context.Context, id uint64) (model.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	rm, ok := r.db.t.rooms[id]
	if !ok {
		return model.Room{}, errors.Wrap(apperr.ErrNotFound, "room")
	}
	return copyRoom(rm), nil
}

func (r *roomRepo) GetByShortcut(_ context.Context, shortcut string) (model.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, rm := range r.db.t.rooms {
		if rm.Shortcut == shortcut {
			return copyRoom(rm), nil
		}
	}
	return model.Room{}, errors.Wrap(apperr.ErrNotFound, "room")
}

func (r *roomRepo) List(_ context.Context) ([]model.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Room, 0, len(r.db.t.rooms))
	for _, rm := range r.db.t.rooms {
		out = append(out, copyRoom(rm))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Building != out[j].Building {
			return out[i].Building < out[j].Building
		}
		return out[i].Shortcut < out[j].Shortcut
	})
	return out, nil
}

func (r *roomRepo) AddOccupant(_ context.Context, roomID, userID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rm, ok := r.db.t.rooms[roomID]
	if !ok {
		return errors.Wrap(apperr.ErrNotFound, "room")
	}
	rm.OccupantIDs = dedupe(append(ids(rm.OccupantIDs), userID))
	r.db.t.rooms[roomID] = rm
	return nil
}

func (r *roomRepo) CreateRequest(_ context.Context, rq *model.RoomRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if rq.CreatedAt.IsZero() {
		rq.CreatedAt = time.Now().UTC()
	}
	if rq.Status == "" {
		rq.Status = model.StatusPending
	}
	rq.ID = r.db.t.next("room_requests")
	r.db.t.requests[rq.ID] = *rq
	return nil
}

func (r *roomRepo) GetRequestForUpdate(_ context.Context, id uint64) (model.RoomRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	rq, ok := r.db.t.requests[id]
	if !ok {
		return model.RoomRequest{}, errors.Wrap(apperr.ErrNotFound, "room request")
	}
	return rq, nil
}

func (r *roomRepo) ListRequestsByStatus(_ context.Context, status model.ApprovalStatus) ([]model.RoomRequest, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.RoomRequest, 0)
	for _, rq := range r.db.t.requests {
		if rq.Status == status {
			out = append(out, rq)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *roomRepo) ResolveRequest(_ context.Context, id uint64, status model.ApprovalStatus, roomID *uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rq, ok := r.db.t.requests[id]
	if !ok {
		return errors.Wrap(apperr.ErrNotFound, "room request")
	}
	rq.Status = status
	rq.RoomID = roomID
	r.db.t.requests[id] = rq
	return nil
}
