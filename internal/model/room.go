package model

import "time"

// RoomKind tags the variant of a room. Kind-specific fields live on Room
// and are only meaningful for the matching kind.
type RoomKind string

const (
	RoomLecture RoomKind = "LECTURE"
	RoomLab     RoomKind = "LAB"
	RoomOffice  RoomKind = "OFFICE"
	RoomStudy   RoomKind = "STUDY"
)

func (k RoomKind) Valid() bool {
	switch k {
	case RoomLecture, RoomLab, RoomOffice, RoomStudy:
		return true
	}
	return false
}

// Room mirrors the `rooms` table. PCSupport applies to LAB rooms,
// OccupantIDs to OFFICE rooms.
type Room struct {
	ID          uint64    `json:"id"`
	Kind        RoomKind  `json:"kind"`
	Shortcut    string    `json:"shortcut"`
	Building    string    `json:"building"`
	Floor       int32     `json:"floor"`
	Capacity    uint32    `json:"capacity"`
	PCSupport   bool      `json:"pc_support,omitempty"`
	OccupantIDs []uint64  `json:"occupant_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomRequest is a pending room-creation application. Approval materializes
// a Room and records its id in RoomID; the request row is kept.
type RoomRequest struct {
	ID          uint64         `json:"id"`
	Kind        RoomKind       `json:"kind"`
	Name        string         `json:"name"`
	Building    string         `json:"building"`
	Floor       int32          `json:"floor"`
	Capacity    uint32         `json:"capacity"`
	PCSupport   bool           `json:"pc_support"`
	RequesterID uint64         `json:"requester_id"`
	Status      ApprovalStatus `json:"status"`
	RoomID      *uint64        `json:"room_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Materialize builds the concrete room described by the request.
func (r RoomRequest) Materialize(now time.Time) Room {
	room := Room{
		Kind:      r.Kind,
		Shortcut:  r.Name,
		Building:  r.Building,
		Floor:     r.Floor,
		Capacity:  r.Capacity,
		CreatedAt: now,
	}
	switch r.Kind {
	case RoomLab:
		room.PCSupport = r.PCSupport
	case RoomOffice:
		room.OccupantIDs = []uint64{}
	case RoomLecture, RoomStudy:
	}
	return room
}
