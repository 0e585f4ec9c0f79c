package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
)

// CourseHandler serves the course catalogue, the course approval workflow
// and student enrollment.
type CourseHandler struct {
	Courses   *service.CourseService
	Approvals *service.ApprovalService
}

func NewCourseHandler(courses *service.CourseService, approvals *service.ApprovalService) *CourseHandler {
	return &CourseHandler{Courses: courses, Approvals: approvals}
}

type createCourseReq struct {
	Name           string `json:"name" validate:"required,notblank,max=128"`
	Shortcut       string `json:"shortcut" validate:"required,alphanum,max=16"`
	Description    string `json:"description" validate:"max=4096"`
	PriceCents     uint32 `json:"price_cents"`
	CompletionType string `json:"completion_type" validate:"required,oneof=EXAM UNIT_CREDIT GRADED_UNIT_CREDIT UNIT_CREDIT_EXAM"`
	Capacity       uint32 `json:"capacity" validate:"required,min=1"`
	Autoregister   bool   `json:"autoregister"`
}

type addTeacherReq struct {
	TeacherID uint64 `json:"teacher_id" validate:"required"`
}

func (h *CourseHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req createCourseReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	course, err := h.Approvals.CreateCourse(ctx, a, service.CourseInput{
		Name:           req.Name,
		Shortcut:       req.Shortcut,
		Description:    req.Description,
		PriceCents:     req.PriceCents,
		CompletionType: model.CompletionType(strings.ToUpper(req.CompletionType)),
		Capacity:       req.Capacity,
		Autoregister:   req.Autoregister,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, course)
}

// List returns approved courses.
func (h *CourseHandler) List(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	courses, err := h.Courses.ListApproved(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	course, err := h.Courses.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Pending(c echo.Context) error {
	ctx, cancel := timeout(c)
	defer cancel()
	courses, err := h.Approvals.PendingCourses(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) Approve(c echo.Context) error {
	return h.decide(c, h.Approvals.ApproveCourse)
}

func (h *CourseHandler) Reject(c echo.Context) error {
	return h.decide(c, h.Approvals.RejectCourse)
}

func (h *CourseHandler) decide(c echo.Context, fn func(ctx context.Context, id uint64) (model.Course, error)) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	course, err := fn(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) AddTeacher(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req addTeacherReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	course, err := h.Courses.AddTeacher(ctx, a, id, req.TeacherID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, course)
}

// Register enrolls the caller in a course.
func (h *CourseHandler) Register(c echo.Context) error {
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
	sc, err := h.Courses.Register(ctx, a, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sc)
}

func (h *CourseHandler) ApproveRegistration(c echo.Context) error {
	return h.decideRegistration(c, true)
}

func (h *CourseHandler) RejectRegistration(c echo.Context) error {
	return h.decideRegistration(c, false)
}

func (h *CourseHandler) decideRegistration(c echo.Context, approve bool) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	courseID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return err
	}
	ctx, cancel := timeout(c)
	defer cancel()
	sc, err := h.Courses.DecideRegistration(ctx, a, courseID, studentID, approve)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *CourseHandler) Students(c echo.Context) error {
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
	students, err := h.Courses.ListStudents(ctx, a, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, students)
}
