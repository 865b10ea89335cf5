package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/eduflex-backend/config"
	"github.com/oksasatya/eduflex-backend/internal/container"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/infrastructure/memory"
	"github.com/oksasatya/eduflex-backend/internal/interface/middleware"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
	"github.com/oksasatya/eduflex-backend/pkg/validation"
)

type tokenSink struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (s *tokenSink) DeliverResetToken(_ context.Context, u *entity.User, token string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[u.Email] = token
	return nil
}

func (s *tokenSink) PasswordChanged(context.Context, *entity.User) error { return nil }

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type app struct {
	t      *testing.T
	engine *gin.Engine
	store  *memory.Store
	sink   *tokenSink
	drain  func()
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger, _ := test.NewNullLogger()
	mem := memory.NewStore()
	sink := &tokenSink{tokens: map[string]string{}}
	cfg := &config.Config{
		PasswordMinLength:   6,
		ResetTokenTTL:       time.Hour,
		ProfileCacheTTL:     time.Minute,
		DebugMetricsEnabled: false,
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(logger), middleware.RequestIDMiddleware(), middleware.RealIP())
	reg := NewRegistry(engine)
	drain := Wire(reg, Deps{
		Config: cfg,
		Logger: logger,
		Store: container.Store{
			Users:       mem.Users(),
			Courses:     mem.Courses(),
			Assignments: mem.Assignments(),
			AuditLogs:   mem.AuditLogs(),
		},
		JWT:      helpers.NewJWTManager("router-test", time.Hour, "eduflex-test"),
		Hasher:   helpers.NewPasswordHasher(bcrypt.MinCost, 4),
		Notifier: sink,
	})
	reg.RegisterAll()
	t.Cleanup(drain)
	return &app{t: t, engine: engine, store: mem, sink: sink, drain: drain}
}

func (a *app) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

type session struct {
	Token string             `json:"token"`
	User  entity.UserProfile `json:"user"`
}

func (a *app) register(name, role string) session {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": name + "@eduflex.test", "password": "secret123", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	var s session
	require.NoError(a.t, json.Unmarshal(env.Data, &s))
	return s
}

func (a *app) admin() session {
	a.t.Helper()
	ctx := context.Background()
	hash, err := helpers.HashPassword("adminpass")
	require.NoError(a.t, err)
	require.NoError(a.t, a.store.Users().Create(ctx, &entity.User{Name: "root", Email: "root@eduflex.test", PasswordHash: hash, Role: entity.RoleAdmin}))
	code, env := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "root@eduflex.test", "password": "adminpass"})
	require.Equal(a.t, http.StatusOK, code)
	var s session
	require.NoError(a.t, json.Unmarshal(env.Data, &s))
	return s
}

func (a *app) createCourse(token, title string) entity.CourseView {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/courses", token, gin.H{"title": title, "description": title + " intro"})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	var c entity.CourseView
	require.NoError(a.t, json.Unmarshal(env.Data, &c))
	return c
}

func TestRegisterLoginMe(t *testing.T) {
	a := newApp(t)
	s := a.register("ada", "")
	assert.Equal(t, entity.RoleStudent, s.User.Role)
	assert.NotEmpty(t, s.Token)

	code, env := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ADA@eduflex.test", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = a.do(http.MethodGet, "/api/auth/me", s.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me entity.UserProfile
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ada@eduflex.test", me.Email)
	assert.NotContains(t, string(env.Data), "password")
}

func TestRegisterErrors(t *testing.T) {
	a := newApp(t)
	a.register("ada", "student")

	code, env := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "x", "email": "Ada@EduFlex.test", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DuplicateEmail", env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "x", "email": "x@eduflex.test", "password": "abc"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "WeakPassword", env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "name")

	code, env = a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "x", "email": "y@eduflex.test", "password": "secret123", "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Code)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	a := newApp(t)
	a.register("ada", "")

	c1, wrong := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@eduflex.test", "password": "nope"})
	c2, unknown := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@eduflex.test", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, c1)
	assert.Equal(t, c1, c2)
	assert.Equal(t, "InvalidCredentials", wrong.Error.Code)
	assert.Equal(t, wrong.Error.Code, unknown.Error.Code)
	assert.Equal(t, wrong.Message, unknown.Message)
}

func TestPasswordResetOverHTTP(t *testing.T) {
	a := newApp(t)
	a.register("ada", "")

	c1, known := a.do(http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "ada@eduflex.test"})
	c2, unknown := a.do(http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "ghost@eduflex.test"})
	require.Equal(t, http.StatusOK, c1)
	assert.Equal(t, c1, c2)
	assert.Equal(t, known.Message, unknown.Message)

	a.drain()
	a.sink.mu.Lock()
	token := a.sink.tokens["ada@eduflex.test"]
	a.sink.mu.Unlock()
	require.NotEmpty(t, token)

	code, _ := a.do(http.MethodPost, "/api/auth/reset-password", "", gin.H{"token": token, "new_password": "brandnew"})
	require.Equal(t, http.StatusOK, code)

	code, env := a.do(http.MethodPost, "/api/auth/reset-password", "", gin.H{"token": token, "new_password": "brandnew2"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "InvalidOrExpiredToken", env.Error.Code)

	code, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@eduflex.test", "password": "brandnew"})
	assert.Equal(t, http.StatusOK, code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newApp(t)
	for _, path := range []string{"/api/auth/me", "/api/courses", "/api/me/courses", "/api/admin/users"} {
		code, env := a.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "Unauthenticated", env.Error.Code, path)
	}
	code, _ := a.do(http.MethodGet, "/api/courses", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCourseOwnership(t *testing.T) {
	a := newApp(t)
	p1 := a.register("p1", "professor")
	p2 := a.register("p2", "professor")
	stu := a.register("stu", "student")
	root := a.admin()

	code, env := a.do(http.MethodPost, "/api/courses", stu.Token, gin.H{"title": "x", "description": "y"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Forbidden", env.Error.Code)

	course := a.createCourse(p1.Token, "Go")
	assert.Equal(t, p1.User.ID, course.ProfessorID)

	code, _ = a.do(http.MethodPut, "/api/courses/"+course.ID, p2.Token, gin.H{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, code)
	code, env = a.do(http.MethodGet, "/api/courses/"+course.ID, stu.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"title":"Go"`)

	code, env = a.do(http.MethodPut, "/api/courses/"+course.ID, root.Token, gin.H{"title": "Go by admin"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"title":"Go by admin"`)

	code, _ = a.do(http.MethodGet, "/api/courses/does-not-exist", stu.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodDelete, "/api/courses/"+course.ID, p2.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodDelete, "/api/courses/"+course.ID, p1.Token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestEnrollOverHTTP(t *testing.T) {
	a := newApp(t)
	prof := a.register("prof", "professor")
	other := a.register("other", "professor")
	stu := a.register("stu", "student")
	course := a.createCourse(prof.Token, "Go")
	path := "/api/courses/" + course.ID + "/enroll"

	for i := 0; i < 2; i++ {
		code, env := a.do(http.MethodPost, path, prof.Token, gin.H{"student_id": stu.User.ID})
		require.Equal(t, http.StatusOK, code)
		var v entity.CourseView
		require.NoError(t, json.Unmarshal(env.Data, &v))
		require.Len(t, v.Students, 1)
		assert.Equal(t, stu.User.ID, v.Students[0].ID)
	}

	code, env := a.do(http.MethodPost, path, prof.Token, gin.H{"student_id": other.User.ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ValidationError", env.Error.Code)

	code, _ = a.do(http.MethodPost, path, other.Token, gin.H{"student_id": stu.User.ID})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodGet, "/api/me/courses", stu.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), course.ID)
}

func TestAdminCreatedCourseEnrollsOnce(t *testing.T) {
	a := newApp(t)
	root := a.admin()
	prof := a.register("prof", "professor")
	stu := a.register("stu", "student")

	code, env := a.do(http.MethodPost, "/api/courses", root.Token, gin.H{
		"title": "Go", "description": "Go intro", "professor_id": prof.User.ID,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var course entity.CourseView
	require.NoError(t, json.Unmarshal(env.Data, &course))
	assert.Equal(t, prof.User.ID, course.ProfessorID)

	path := "/api/courses/" + course.ID + "/enroll"
	for i := 0; i < 2; i++ {
		code, env = a.do(http.MethodPost, path, prof.Token, gin.H{"student_id": stu.User.ID})
		require.Equal(t, http.StatusOK, code, env.Message)
	}

	code, env = a.do(http.MethodGet, "/api/courses/"+course.ID+"/students", prof.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var students []entity.UserProfile
	require.NoError(t, json.Unmarshal(env.Data, &students))
	require.Len(t, students, 1)
	assert.Equal(t, stu.User.ID, students[0].ID)
}

func TestAssignmentsOverHTTP(t *testing.T) {
	a := newApp(t)
	prof := a.register("prof", "professor")
	stu := a.register("stu", "student")
	outsider := a.register("out", "student")
	course := a.createCourse(prof.Token, "Go")
	_, _ = a.do(http.MethodPost, "/api/courses/"+course.ID+"/enroll", prof.Token, gin.H{"student_id": stu.User.ID})

	code, env := a.do(http.MethodPost, "/api/courses/"+course.ID+"/assignments", prof.Token, gin.H{
		"title": "HW1", "due_date": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var asg entity.Assignment
	require.NoError(t, json.Unmarshal(env.Data, &asg))

	code, _ = a.do(http.MethodPost, "/api/assignments/"+asg.ID+"/submissions", outsider.Token, gin.H{"file_url": "https://files.test/a.pdf"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/api/assignments/"+asg.ID+"/submissions", stu.Token, gin.H{"file_url": "https://files.test/a.pdf"})
	assert.Equal(t, http.StatusCreated, code)

	code, env = a.do(http.MethodPatch, "/api/assignments/"+asg.ID+"/grade", prof.Token, gin.H{"student_id": stu.User.ID, "grade": "A-"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"value":"A-"`)
}

func TestAdminRoutes(t *testing.T) {
	a := newApp(t)
	prof := a.register("prof", "professor")
	root := a.admin()

	code, _ := a.do(http.MethodGet, "/api/admin/users", prof.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/api/admin/users", root.Token, gin.H{
		"name": "ops", "email": "ops@eduflex.test", "password": "opspass", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ops@eduflex.test", "password": "opspass"})
	assert.Equal(t, http.StatusOK, code)

	code, env := a.do(http.MethodPatch, "/api/admin/users/"+prof.User.ID+"/role", root.Token, gin.H{"role": "student"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"role":"student"`)
}

func TestAuditTrailHasNoSecrets(t *testing.T) {
	a := newApp(t)
	a.register("ada", "")
	_, _ = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@eduflex.test", "password": "wrongpass"})

	entries := a.store.AuditEntries()
	require.NotEmpty(t, entries)
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
		b, _ := json.Marshal(e)
		assert.NotContains(t, string(b), "secret123")
		assert.NotContains(t, string(b), "wrongpass")
	}
	assert.Contains(t, actions, "register")
	assert.Contains(t, actions, "login_failed")
}

func TestHealthz(t *testing.T) {
	a := newApp(t)
	code, env := a.do(http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.True(t, strings.HasPrefix(env.Message, "ok"))
}
