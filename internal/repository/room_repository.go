package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/database"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// RoomRepo persists rooms (one table, `kind` discriminator), office occupants
// and room creation requests.
type RoomRepo struct{ ex database.Executor }

const roomColumns = "id,kind,shortcut,building,floor,capacity,pc_support,created_at"

func scanRoom(row interface{ Scan(...interface{}) error }) (model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.Kind, &rm.Shortcut, &rm.Building, &rm.Floor, &rm.Capacity, &rm.PCSupport, &rm.CreatedAt)
	return rm, err
}

func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	if rm.CreatedAt.IsZero() {
		rm.CreatedAt = time.Now().UTC()
	}
	res, err := r.ex.ExecContext(ctx,
		"INSERT INTO rooms (kind,shortcut,building,floor,capacity,pc_support,created_at) VALUES (?,?,?,?,?,?,?)",
		rm.Kind, rm.Shortcut, rm.Building, rm.Floor, rm.Capacity, rm.PCSupport, rm.CreatedAt)
	if err != nil {
		return classify(err, "create room")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create room")
	}
	rm.ID = uint64(id)
	for _, uid := range rm.OccupantIDs {
		if err := r.AddOccupant(ctx, rm.ID, uid); err != nil {
			return err
		}
	}
	return nil
}

func (r *RoomRepo) withOccupants(ctx context.Context, rm model.Room) (model.Room, error) {
	if rm.Kind != model.RoomOffice {
		return rm, nil
	}
	ids, err := queryIDs(ctx, r.ex, "office occupants",
		"SELECT user_id FROM office_occupants WHERE room_id=? ORDER BY user_id", rm.ID)
	rm.OccupantIDs = ids
	return rm, err
}

func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	rm, err := scanRoom(r.ex.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id=?", id))
	if err != nil {
		return rm, classify(err, "room")
	}
	return r.withOccupants(ctx, rm)
}

func (r *RoomRepo) GetByShortcut(ctx context.Context, shortcut string) (model.Room, error) {
	rm, err := scanRoom(r.ex.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE shortcut=?", shortcut))
	if err != nil {
		return rm, classify(err, "room")
	}
	return r.withOccupants(ctx, rm)
}

func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.ex.QueryContext(ctx, "SELECT "+roomColumns+" FROM rooms ORDER BY building, shortcut")
	if err != nil {
		return nil, classify(err, "list rooms")
	}
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			rows.Close()
			return nil, classify(err, "list rooms")
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, classify(err, "list rooms")
	}
	rows.Close()
	// occupants are loaded after the cursor is closed so the same connection can be reused inside a tx
	for i := range out {
		if out[i], err = r.withOccupants(ctx, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *RoomRepo) AddOccupant(ctx context.Context, roomID, userID uint64) error {
	_, err := r.ex.ExecContext(ctx,
		"INSERT IGNORE INTO office_occupants (room_id, user_id) VALUES (?,?)", roomID, userID)
	return classify(err, "add occupant")
}

const requestColumns = "id,kind,name,building,floor,capacity,pc_support,requester_id,status,room_id,created_at"

func scanRequest(row interface{ Scan(...interface{}) error }) (model.RoomRequest, error) {
	var (
		rq     model.RoomRequest
		roomID sql.NullInt64
	)
	err := row.Scan(&rq.ID, &rq.Kind, &rq.Name, &rq.Building, &rq.Floor, &rq.Capacity, &rq.PCSupport,
		&rq.RequesterID, &rq.Status, &roomID, &rq.CreatedAt)
	if roomID.Valid {
		id := uint64(roomID.Int64)
		rq.RoomID = &id
	}
	return rq, err
}

func (r *RoomRepo) CreateRequest(ctx context.Context, rq *model.RoomRequest) error {
	if rq.CreatedAt.IsZero() {
		rq.CreatedAt = time.Now().UTC()
	}
	if rq.Status == "" {
		rq.Status = model.StatusPending
	}
	res, err := r.ex.ExecContext(ctx,
		`INSERT INTO room_requests (kind,name,building,floor,capacity,pc_support,requester_id,status,created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		rq.Kind, rq.Name, rq.Building, rq.Floor, rq.Capacity, rq.PCSupport, rq.RequesterID, rq.Status, rq.CreatedAt)
	if err != nil {
		return classify(err, "create room request")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "create room request")
	}
	rq.ID = uint64(id)
	return nil
}

func (r *RoomRepo) GetRequestForUpdate(ctx context.Context, id uint64) (model.RoomRequest, error) {
	rq, err := scanRequest(r.ex.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM room_requests WHERE id=? FOR UPDATE", id))
	return rq, classify(err, "room request")
}

func (r *RoomRepo) ListRequestsByStatus(ctx context.Context, status model.ApprovalStatus) ([]model.RoomRequest, error) {
	rows, err := r.ex.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM room_requests WHERE status=? ORDER BY created_at, id", status)
	if err != nil {
		return nil, classify(err, "list room requests")
	}
	defer rows.Close()
	out := make([]model.RoomRequest, 0)
	for rows.Next() {
		rq, err := scanRequest(rows)
		if err != nil {
			return nil, classify(err, "list room requests")
		}
		out = append(out, rq)
	}
	return out, classify(rows.Err(), "list room requests")
}

func (r *RoomRepo) ResolveRequest(ctx context.Context, id uint64, status model.ApprovalStatus, roomID *uint64) error {
	res, err := r.ex.ExecContext(ctx,
		"UPDATE room_requests SET status=?, room_id=? WHERE id=?", status, roomID, id)
	return mustAffect(res, err, "room request")
}
