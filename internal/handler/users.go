package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

type roleReq struct {
	Role string `json:"role" validate:"required,oneof=USER TEACHER ADMIN"`
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	u, err := h.Users.Get(ctx, a.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// SetRole changes a user's role. Admin only.
func (h *UserHandler) SetRole(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req roleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	u, err := h.Users.SetRole(ctx, id, model.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
