package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

type TermHandler struct {
	Terms *service.TermService
}

func NewTermHandler(terms *service.TermService) *TermHandler {
	return &TermHandler{Terms: terms}
}

type createTermReq struct {
	Kind         string    `json:"kind" validate:"required,oneof=LECTURE LAB EXAM MIDTERM_EXAM"`
	Name         string    `json:"name" validate:"required,notblank,max=128"`
	Description  string    `json:"description" validate:"max=4096"`
	MinPoints    uint32    `json:"min_points"`
	MaxPoints    uint32    `json:"max_points" validate:"gtefield=MinPoints"`
	Mandatory    bool      `json:"mandatory"`
	Date         time.Time `json:"date" validate:"required"`
	DurationMin  uint32    `json:"duration_min" validate:"required,min=1,max=1440"`
	SupervisorID *uint64   `json:"supervisor_id"`
	RoomIDs      []uint64  `json:"room_ids" validate:"dive,required"`
}

// Create adds a term to a course and propagates it to every party's
// schedule.
func (h *TermHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req createTermReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	term, err := h.Terms.CreateTerm(ctx, a, courseID, service.TermInput{
		Kind:         model.TermKind(strings.ToUpper(req.Kind)),
		Name:         req.Name,
		Description:  req.Description,
		MinPoints:    req.MinPoints,
		MaxPoints:    req.MaxPoints,
		Mandatory:    req.Mandatory,
		Date:         req.Date.UTC(),
		DurationMin:  req.DurationMin,
		SupervisorID: req.SupervisorID,
		RoomIDs:      req.RoomIDs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, term)
}

func (h *TermHandler) ListByCourse(c echo.Context) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	terms, err := h.Terms.ListByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, terms)
}

// Register signs the caller up for a term.
func (h *TermHandler) Register(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	termID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Terms.RegisterForTerm(ctx, a, termID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
