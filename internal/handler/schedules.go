package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

type ScheduleHandler struct {
	Schedules *service.ScheduleService
}

func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Schedules: schedules}
}

type weekQuery struct {
	Week string `query:"week" validate:"monday"`
}

func (h *ScheduleHandler) week(c echo.Context) (weekQuery, error) {
	var q weekQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return q, echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	return q, c.Validate(&q)
}

// Me returns the caller's week, ?week=YYYY-MM-DD (a Monday, default this
// week).
func (h *ScheduleHandler) Me(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	q, err := h.week(c)
	if err != nil {
		return err
	}
	start, err := h.Schedules.ParseWeek(q.Week)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	items, err := h.Schedules.UserWeek(ctx, a.ID, start)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"week": start.Format("2006-01-02"), "items": items})
}

func (h *ScheduleHandler) Course(c echo.Context) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	q, err := h.week(c)
	if err != nil {
		return err
	}
	start, err := h.Schedules.ParseWeek(q.Week)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	items, err := h.Schedules.CourseWeek(ctx, courseID, start)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"week": start.Format("2006-01-02"), "items": items})
}

// MyCourses returns week views of every course the caller studies or
// teaches.
func (h *ScheduleHandler) MyCourses(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	q, err := h.week(c)
	if err != nil {
		return err
	}
	start, err := h.Schedules.ParseWeek(q.Week)
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	courses, err := h.Schedules.MyCoursesWeek(ctx, a, start)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"week": start.Format("2006-01-02"), "courses": courses})
}
