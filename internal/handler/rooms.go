package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

// RoomHandler serves rooms and the room request approval workflow.
type RoomHandler struct {
	Rooms     *service.RoomService
	Approvals *service.ApprovalService
}

func NewRoomHandler(rooms *service.RoomService, approvals *service.ApprovalService) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Approvals: approvals}
}

type roomRequestReq struct {
	Kind      string `json:"kind" validate:"required,oneof=LECTURE LAB OFFICE STUDY"`
	Name      string `json:"name" validate:"required,alphanum,max=16"`
	Building  string `json:"building" validate:"required,notblank,max=64"`
	Floor     int32  `json:"floor"`
	Capacity  uint32 `json:"capacity" validate:"required,min=1"`
	PCSupport bool   `json:"pc_support"`
}

type occupantReq struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) SubmitRequest(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req roomRequestReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	rq, err := h.Approvals.SubmitRoomRequest(ctx, a, service.RoomRequestInput{
		Kind:      model.RoomKind(strings.ToUpper(req.Kind)),
		Name:      req.Name,
		Building:  req.Building,
		Floor:     req.Floor,
		Capacity:  req.Capacity,
		PCSupport: req.PCSupport,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rq)
}

func (h *RoomHandler) Pending(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	pending, err := h.Approvals.PendingRoomRequests(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pending)
}

// Approve materializes the requested room.
func (h *RoomHandler) Approve(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	room, err := h.Approvals.ApproveRoomRequest(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) Reject(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	rq, err := h.Approvals.RejectRoomRequest(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rq)
}

func (h *RoomHandler) AddOccupant(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req occupantReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	room, err := h.Rooms.AddOccupant(ctx, id, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}
