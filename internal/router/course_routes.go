package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/handler"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/middleware"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
)

// RegisterCourses wires the course catalogue, approval, enrollment and term
// endpoints. Public reads go through the response cache; every successful
// write under /courses purges it.
func RegisterCourses(e *echo.Echo, c *handler.CourseHandler, t *handler.TermHandler, n *handler.NotificationHandler, auth echo.MiddlewareFunc, cache *middleware.ResponseCache) {
	cached := cache.Middleware()
	staff := middleware.RequireRole(model.RoleTeacher, model.RoleAdmin)
	admin := middleware.RequireRole(model.RoleAdmin)

	e.GET("/courses", c.List, cached)
	e.GET("/courses/:id", c.Get, cached)
	e.GET("/courses/:id/terms", t.ListByCourse, cached)

	g := e.Group("/courses", auth, cache.Invalidate())
	g.POST("", c.Create, staff)
	g.GET("/pending", c.Pending, admin)
	g.POST("/:id/approve", c.Approve, admin)
	g.POST("/:id/reject", c.Reject, admin)
	g.POST("/:id/teachers", c.AddTeacher, staff)
	g.POST("/:id/register", c.Register)
	g.POST("/:id/registrations/:studentId/approve", c.ApproveRegistration, staff)
	g.POST("/:id/registrations/:studentId/reject", c.RejectRegistration, staff)
	g.GET("/:id/students", c.Students, staff)
	g.POST("/:id/terms", t.Create, staff)
	g.POST("/:id/notifications", n.SendToCourse, staff)

	e.POST("/terms/:id/register", t.Register, auth)
}
