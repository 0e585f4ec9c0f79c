package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/middleware"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

// RefreshCookie holds the raw refresh token. It is scoped to /auth so it
// only travels with refresh and logout calls.
const RefreshCookie = "refresh_token"

// AuthHandler serves registration, activation, password and session
// endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Auth   *service.AuthService
	Tokens *service.TokenService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Username  string  `json:"username" validate:"required,notblank,max=64"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	Telephone *string `json:"telephone" validate:"omitempty,e164"`
	Birthday  string  `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
}

type loginReq struct {
	Login    string `json:"login" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type emailReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetReq struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type changePasswordReq struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    model.User `json:"user"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Telephone: req.Telephone,
	}
	if req.Birthday != "" {
		d, err := time.Parse(time.DateOnly, req.Birthday)
		if err != nil {
			return errors.Wrap(apperr.ErrInvalidArgument, "birthday")
		}
		in.Birthday = &d
	}

	ctx, cancel := timeout(c)
	defer cancel()
	u, err := h.Auth.Register(ctx, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	sess, err := h.Auth.Login(ctx, req.Login, req.Password)
	if err != nil {
		return err
	}
	return h.respondSession(c, sess)
}

// Refresh rotates the refresh token taken from the body or the cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.refreshToken(c)
	if raw == "" {
		return errors.Wrap(apperr.ErrUnauthenticated, "refresh token required")
	}
	ctx, cancel := timeout(c)
	defer cancel()
	sess, err := h.Auth.Refresh(ctx, raw)
	if err != nil {
		return err
	}
	return h.respondSession(c, sess)
}

// Logout revokes the refresh token, if any, and clears both cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Auth.Logout(ctx, h.refreshToken(c)); err != nil {
		return err
	}
	c.SetCookie(h.cookie(middleware.AccessCookie, "", "/", -1))
	c.SetCookie(h.cookie(RefreshCookie, "", "/auth", -1))
	return c.NoContent(http.StatusNoContent)
}

// Activate consumes the emailed activation token (?token=).
func (h *AuthHandler) Activate(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("token"))
	if raw == "" {
		return errors.Wrap(apperr.ErrInvalidArgument, "token required")
	}
	ctx, cancel := timeout(c)
	defer cancel()
	u, err := h.Tokens.Activate(ctx, raw)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) ResendActivation(c echo.Context) error {
	var req emailReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Tokens.ResendActivation(ctx, req.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// GeneratePasswordReset mails a reset link. Unknown emails get the same
// response.
func (h *AuthHandler) GeneratePasswordReset(c echo.Context) error {
	var req emailReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Tokens.RequestPasswordReset(ctx, req.Email); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Tokens.ResetPassword(ctx, req.Token, req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req changePasswordReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	if err := h.Tokens.ChangePassword(ctx, a.ID, req.OldPassword, req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) refreshToken(c echo.Context) string {
	var req refreshReq
	if c.Request().ContentLength > 0 {
		_ = c.Bind(&req)
	}
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		return raw
	}
	if ck, err := c.Cookie(RefreshCookie); err == nil {
		return ck.Value
	}
	return ""
}

func (h *AuthHandler) respondSession(c echo.Context, s service.Session) error {
	c.SetCookie(h.cookie(middleware.AccessCookie, s.Access.Token, "/", int(h.Cfg.AccessTTL/time.Second)))
	c.SetCookie(h.cookie(RefreshCookie, s.Refresh.Raw, "/auth", int(h.Cfg.RefreshTTL/time.Second)))
	return c.JSON(http.StatusOK, authResp{
		User:    s.User,
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp},
	})
}

func (h *AuthHandler) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
