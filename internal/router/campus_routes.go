package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/middleware"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// RegisterCampus wires rooms, schedules and notifications. All of them
// require a session.
func RegisterCampus(e *echo.Echo, h Handlers, auth echo.MiddlewareFunc) {
	staff := middleware.RequireRole(model.RoleTeacher, model.RoleAdmin)
	admin := middleware.RequireRole(model.RoleAdmin)

	rooms := e.Group("/rooms", auth)
	rooms.GET("", h.Rooms.List)
	rooms.POST("/requests", h.Rooms.SubmitRequest, staff)
	rooms.GET("/pending", h.Rooms.Pending, admin)
	rooms.POST("/requests/:id/approve", h.Rooms.Approve, admin)
	rooms.POST("/requests/:id/reject", h.Rooms.Reject, admin)
	rooms.POST("/:id/occupants", h.Rooms.AddOccupant, admin)

	sched := e.Group("/schedules", auth)
	sched.GET("/me", h.Schedules.Me)
	sched.GET("/courses", h.Schedules.MyCourses)
	sched.GET("/courses/:id", h.Schedules.Course)

	notes := e.Group("/notifications", auth)
	notes.POST("", h.Notifications.Send)
	notes.GET("", h.Notifications.List)
	notes.GET("/unread-count", h.Notifications.UnreadCount)
	notes.POST("/:id/read", h.Notifications.MarkRead)
}
