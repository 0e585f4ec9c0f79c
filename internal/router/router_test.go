package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/config"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/mail"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/model"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/queue"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/repository/memory"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/service"
	"github.com/Igor-Lacko/wis2-backend-sub000/internal/utils"
)

type api struct {
	t      *testing.T
	e      *echo.Echo
	svc    *service.Services
	sender *mail.ConsoleSender
	pub    *queue.Recorder
}

func newAPI(t *testing.T) *api {
	t.Helper()
	cfg := config.Test()
	sender := mail.NewConsoleSender(cfg.MailFrom, io.Discard)
	pub := &queue.Recorder{}
	svc := service.New(service.Deps{
		Store:     memory.New(),
		Mailer:    mail.NewMailer(sender, cfg.FrontendURL),
		Hasher:    utils.Hasher{Cost: cfg.BcryptCost},
		Publisher: pub,
		Config:    cfg,
	})
	e := New(Deps{Cfg: cfg, Services: svc, LogLevel: log.OFF})
	e.Logger.SetOutput(io.Discard)
	return &api{t: t, e: e, svc: svc, sender: sender, pub: pub}
}

func (a *api) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

var tokenRe = regexp.MustCompile(`token=(\S+)`)

func (a *api) lastToken() string {
	a.t.Helper()
	msg, ok := a.sender.Last()
	require.True(a.t, ok)
	m := tokenRe.FindStringSubmatch(msg.TextContent)
	require.Len(a.t, m, 2)
	raw, err := url.QueryUnescape(m[1])
	require.NoError(a.t, err)
	return raw
}

// signup registers and activates name, optionally promotes it, and logs in.
func (a *api) signup(name string, role model.Role) (uint64, string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/register", echo.Map{
		"username": name,
		"email":    name + "@example.com",
		"password": "password-" + name,
	}, "")
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var u model.User
	decode(a.t, rec, &u)

	rec = a.do(http.MethodGet, "/activate?token="+url.QueryEscape(a.lastToken()), nil, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	if role != model.RoleUser {
		_, err := a.svc.Users.SetRole(context.Background(), u.ID, role)
		require.NoError(a.t, err)
	}

	rec = a.do(http.MethodPost, "/auth/login", echo.Map{"login": name, "password": "password-" + name}, "")
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	decode(a.t, rec, &resp)
	return u.ID, resp.Access.Token
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestSessionCookiesAndRefresh(t *testing.T) {
	a := newAPI(t)
	_, _ = a.signup("alice", model.RoleUser)

	rec := a.do(http.MethodPost, "/auth/login", echo.Map{"login": "alice@example.com", "password": "password-alice"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		cookies[ck.Name] = ck
	}
	require.Contains(t, cookies, "access_token")
	require.Contains(t, cookies, "refresh_token")
	assert.True(t, cookies["refresh_token"].HttpOnly)
	assert.Equal(t, "/auth", cookies["refresh_token"].Path)

	// the access cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.AddCookie(cookies["access_token"])
	me := httptest.NewRecorder()
	a.e.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)

	// refresh via cookie rotates; the old token is then unknown
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookies["refresh_token"])
	first := httptest.NewRecorder()
	a.e.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	replay := a.do(http.MethodPost, "/auth/refresh", echo.Map{"refresh_token": cookies["refresh_token"].Value}, "")
	assert.Equal(t, http.StatusNotFound, replay.Code)

	// logout without any token is a no-op
	out := a.do(http.MethodPost, "/auth/logout", nil, "")
	assert.Equal(t, http.StatusNoContent, out.Code)
}

func TestLoginErrors(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodPost, "/auth/register", echo.Map{
		"username": "bob", "email": "bob@example.com", "password": "password-bob",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	notActivated := a.do(http.MethodPost, "/auth/login", echo.Map{"login": "bob", "password": "password-bob"}, "")
	assert.Equal(t, http.StatusForbidden, notActivated.Code)

	wrong := a.do(http.MethodPost, "/auth/login", echo.Map{"login": "bob", "password": "nope-nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)

	dup := a.do(http.MethodPost, "/auth/register", echo.Map{
		"username": "bob2", "email": "bob@example.com", "password": "password-bob",
	}, "")
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestValidationErrorsListFields(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodPost, "/auth/register", echo.Map{"username": " ", "email": "nope"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "username")
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
}

func TestPasswordResetFlow(t *testing.T) {
	a := newAPI(t)
	_, _ = a.signup("carol", model.RoleUser)

	rec := a.do(http.MethodPost, "/password/generate", echo.Map{"email": "carol@example.com"}, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	token := a.lastToken()

	mismatch := a.do(http.MethodPost, "/password", echo.Map{
		"token": token, "password": "brand-new-pass", "confirm_password": "other-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, mismatch.Code)

	ok := a.do(http.MethodPost, "/password", echo.Map{
		"token": token, "password": "brand-new-pass", "confirm_password": "brand-new-pass",
	}, "")
	require.Equal(t, http.StatusNoContent, ok.Code, ok.Body.String())

	login := a.do(http.MethodPost, "/auth/login", echo.Map{"login": "carol", "password": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusOK, login.Code)

	unknown := a.do(http.MethodPost, "/password/generate", echo.Map{"email": "ghost@example.com"}, "")
	assert.Equal(t, http.StatusAccepted, unknown.Code)
}

func TestCourseLifecycleAndSchedule(t *testing.T) {
	a := newAPI(t)
	_, admin := a.signup("root", model.RoleAdmin)
	_, teacher := a.signup("tina", model.RoleTeacher)
	_, student := a.signup("sam", model.RoleUser)

	forbidden := a.do(http.MethodPost, "/courses", echo.Map{
		"name": "Nope", "shortcut": "NOP", "completion_type": "EXAM", "capacity": 5,
	}, student)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	rec := a.do(http.MethodPost, "/courses", echo.Map{
		"name": "Intro to Programming", "shortcut": "izp", "completion_type": "EXAM",
		"capacity": 10, "autoregister": true,
	}, teacher)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var course model.Course
	decode(t, rec, &course)
	assert.Equal(t, "IZP", course.Shortcut)
	assert.Equal(t, model.StatusPending, course.Status)

	pending := a.do(http.MethodGet, "/courses/pending", nil, teacher)
	assert.Equal(t, http.StatusForbidden, pending.Code)

	path := fmt.Sprintf("/courses/%d", course.ID)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, path+"/approve", nil, admin).Code)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, path+"/reject", nil, admin).Code)

	list := a.do(http.MethodGet, "/courses", nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	var courses []model.Course
	decode(t, list, &courses)
	require.Len(t, courses, 1)

	reg := a.do(http.MethodPost, path+"/register", nil, student)
	require.Equal(t, http.StatusCreated, reg.Code, reg.Body.String())
	var sc model.StudentCourse
	decode(t, reg, &sc)
	assert.Equal(t, model.StatusApproved, sc.Status)

	term := a.do(http.MethodPost, path+"/terms", echo.Map{
		"kind": "LECTURE", "name": "Lecture 1", "mandatory": true,
		"date": "2030-01-08T10:00:00Z", "duration_min": 90, "max_points": 0,
	}, teacher)
	require.Equal(t, http.StatusCreated, term.Code, term.Body.String())

	week := a.do(http.MethodGet, "/schedules/me?week=2030-01-07", nil, student)
	require.Equal(t, http.StatusOK, week.Code, week.Body.String())
	var view struct {
		Week  string               `json:"week"`
		Items []model.ScheduleItem `json:"items"`
	}
	decode(t, week, &view)
	assert.Equal(t, "2030-01-07", view.Week)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "IZP", view.Items[0].CourseShortcut)
	assert.Equal(t, model.TermLecture, view.Items[0].Kind)

	courseWeek := a.do(http.MethodGet, fmt.Sprintf("/schedules/courses/%d?week=2030-01-07", course.ID), nil, teacher)
	assert.Equal(t, http.StatusOK, courseWeek.Code)

	notMonday := a.do(http.MethodGet, "/schedules/me?week=2030-01-08", nil, student)
	assert.Equal(t, http.StatusBadRequest, notMonday.Code)
}

func TestCourseNotificationFanout(t *testing.T) {
	a := newAPI(t)
	_, admin := a.signup("root", model.RoleAdmin)
	_, teacher := a.signup("tina", model.RoleTeacher)
	_, student := a.signup("sam", model.RoleUser)

	rec := a.do(http.MethodPost, "/courses", echo.Map{
		"name": "Databases", "shortcut": "IDS", "completion_type": "UNIT_CREDIT_EXAM",
		"capacity": 3, "autoregister": true,
	}, teacher)
	require.Equal(t, http.StatusCreated, rec.Code)
	var course model.Course
	decode(t, rec, &course)
	path := fmt.Sprintf("/courses/%d", course.ID)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, path+"/approve", nil, admin).Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, path+"/register", nil, student).Code)

	bad := a.do(http.MethodPost, path+"/notifications", echo.Map{"message": "hi", "scope": "everyone"}, teacher)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	sent := a.do(http.MethodPost, path+"/notifications", echo.Map{"message": "exam moved"}, teacher)
	require.Equal(t, http.StatusCreated, sent.Code, sent.Body.String())
	assert.Len(t, a.pub.Events(), 1)

	count := a.do(http.MethodGet, "/notifications/unread-count", nil, student)
	require.Equal(t, http.StatusOK, count.Code)
	var unread struct {
		Unread int `json:"unread"`
	}
	decode(t, count, &unread)
	assert.Equal(t, 1, unread.Unread)

	list := a.do(http.MethodGet, "/notifications", nil, student)
	var notes []model.Notification
	decode(t, list, &notes)
	require.Len(t, notes, 1)

	readByOther := a.do(http.MethodPost, fmt.Sprintf("/notifications/%d/read", notes[0].ID), nil, teacher)
	assert.Equal(t, http.StatusForbidden, readByOther.Code)
	read := a.do(http.MethodPost, fmt.Sprintf("/notifications/%d/read", notes[0].ID), nil, student)
	assert.Equal(t, http.StatusOK, read.Code)
}

func TestRoomRequestWorkflow(t *testing.T) {
	a := newAPI(t)
	_, admin := a.signup("root", model.RoleAdmin)
	teacherID, teacher := a.signup("tina", model.RoleTeacher)

	rec := a.do(http.MethodPost, "/rooms/requests", echo.Map{
		"kind": "OFFICE", "name": "a113", "building": "A", "floor": 1, "capacity": 2,
	}, teacher)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rq model.RoomRequest
	decode(t, rec, &rq)

	pending := a.do(http.MethodGet, "/rooms/pending", nil, admin)
	require.Equal(t, http.StatusOK, pending.Code)

	approved := a.do(http.MethodPost, fmt.Sprintf("/rooms/requests/%d/approve", rq.ID), nil, admin)
	require.Equal(t, http.StatusCreated, approved.Code, approved.Body.String())
	var room model.Room
	decode(t, approved, &room)
	assert.Equal(t, "A113", room.Shortcut)

	again := a.do(http.MethodPost, fmt.Sprintf("/rooms/requests/%d/approve", rq.ID), nil, admin)
	assert.Equal(t, http.StatusConflict, again.Code)

	occ := a.do(http.MethodPost, fmt.Sprintf("/rooms/%d/occupants", room.ID), echo.Map{"user_id": teacherID}, admin)
	require.Equal(t, http.StatusOK, occ.Code, occ.Body.String())
	decode(t, occ, &room)
	assert.Equal(t, []uint64{teacherID}, room.OccupantIDs)
}

func TestUnauthenticated(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/users/me", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/schedules/me", nil, "garbage").Code)
}
