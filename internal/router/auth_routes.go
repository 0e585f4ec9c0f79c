package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/handler"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/middleware"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// RegisterAuth wires the credential endpoints behind the rate limiter and
// the user profile endpoints behind JWT auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, auth, limit echo.MiddlewareFunc) {
	g := e.Group("/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh and logout read the refresh token from the body or cookie.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	act := e.Group("/activate", limit)
	act.GET("", a.Activate)
	act.POST("/resend", a.ResendActivation)

	pw := e.Group("/password", limit)
	pw.POST("/generate", a.GeneratePasswordReset)
	pw.POST("", a.ResetPassword)
	pw.POST("/change", a.ChangePassword, auth)

	users := e.Group("/users", auth)
	users.GET("/me", u.Me)
	users.PATCH("/:id/role", u.SetRole, middleware.RequireRole(model.RoleAdmin))
}
