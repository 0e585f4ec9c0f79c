package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

type NotificationHandler struct {
	Notifications *service.NotificationService
}

func NewNotificationHandler(n *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

type sendReq struct {
	RecipientID uint64 `json:"recipient_id" validate:"required"`
	Message     string `json:"message" validate:"required,notblank,max=2048"`
}

type courseSendReq struct {
	Message string `json:"message" validate:"required,notblank,max=2048"`
	Scope   string `json:"scope" validate:"omitempty,oneof=approved all"`
}

func (h *NotificationHandler) Send(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req sendReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	n, err := h.Notifications.SendToUser(ctx, a.ID, req.RecipientID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// SendToCourse fans a message out to the course's students. scope is
// "approved" (default) or "all".
func (h *NotificationHandler) SendToCourse(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req courseSendReq
	if err := bind(c, &req); err != nil {
		return err
	}
	scope, err := service.ParseScope(req.Scope)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	batch, err := h.Notifications.SendToCourse(ctx, a.ID, courseID, req.Message, scope)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"sent": len(batch), "notifications": batch})
}

func (h *NotificationHandler) List(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	list, err := h.Notifications.List(ctx, a.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	n, err := h.Notifications.MarkRead(ctx, a.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	n, err := h.Notifications.UnreadCount(ctx, a.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}
