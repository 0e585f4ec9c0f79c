// Package router assembles the echo server: global middleware, the error
// handler, the validator and every route group.
package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/handler"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/middleware"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/validation"
)

// Handlers groups the HTTP handlers.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Courses       *handler.CourseHandler
	Terms         *handler.TermHandler
	Rooms         *handler.RoomHandler
	Schedules     *handler.ScheduleHandler
	Notifications *handler.NotificationHandler
}

func NewHandlers(cfg config.Config, s *service.Services) Handlers {
	return Handlers{
		Auth:          handler.NewAuthHandler(cfg, s.Auth, s.Tokens),
		Users:         handler.NewUserHandler(s.Users),
		Courses:       handler.NewCourseHandler(s.Courses, s.Approvals),
		Terms:         handler.NewTermHandler(s.Terms),
		Rooms:         handler.NewRoomHandler(s.Rooms, s.Approvals),
		Schedules:     handler.NewScheduleHandler(s.Schedules),
		Notifications: handler.NewNotificationHandler(s.Notifications),
	}
}

// Deps is everything the server needs. Limiter and Cache may be nil, which
// disables them.
type Deps struct {
	Cfg      config.Config
	Services *service.Services
	Limiter  *middleware.RateLimiter
	Cache    *middleware.ResponseCache
	LogLevel log.Lvl
}

// New builds a configured echo instance with all routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(d.LogLevel)

	v := validation.New()
	e.Validator = v
	e.HTTPErrorHandler = handler.NewErrorHandler(v)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","method":"${method}","uri":"${uri}",` +
			`"status":${status},"latency":"${latency_human}","error":"${error}"}` + "\n",
	}))
	e.Use(echomw.Recover())

	h := NewHandlers(d.Cfg, d.Services)
	auth := middleware.JWTAuth(d.Cfg.JWTSecret, d.Cfg.JWTIssuer)

	RegisterRoutes(e)
	RegisterAuth(e, h.Auth, h.Users, auth, d.Limiter.Middleware())
	RegisterCourses(e, h.Courses, h.Terms, h.Notifications, auth, d.Cache)
	RegisterCampus(e, h, auth)
	return e
}

// RegisterRoutes registers routes that need no session.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
