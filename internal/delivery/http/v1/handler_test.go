package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/password"
	"github.com/adanyl0v/go-task-manager/internal/services"
	"github.com/adanyl0v/go-task-manager/internal/storage/memory"
	"github.com/adanyl0v/go-task-manager/internal/validation"
)

type testServer struct {
	router *gin.Engine
	users  services.UserService
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func newTestServer(t *testing.T, pinger Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.RegisterGinRules())

	store := memory.New()
	if pinger == nil {
		pinger = store
	}
	hasher := password.NewHasherWithParams(&argon2id.Params{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	logger := zerolog.Nop()

	users := services.NewUserService(logger, store, hasher)
	h := New(
		logger,
		pinger,
		services.NewAuthService(logger, store, hasher, "test", []byte("secret"), time.Hour),
		users,
		services.NewTaskStatusService(logger, store),
		services.NewLabelService(logger, store),
		services.NewTaskService(logger, store),
	)

	router := gin.New()
	RegisterRoutes(router.Group("/api"), h)
	return &testServer{router: router, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signUp(t *testing.T, email string) userResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users", "", gin.H{"email": email, "password": "password"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/login", "", gin.H{"username": email, "password": "password"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSignUpAndLogin(t *testing.T) {
	s := newTestServer(t, nil)

	user := s.signUp(t, "jack@example.com")
	assert.False(t, user.IsAdmin)

	rec := s.do(t, http.MethodPost, "/api/users", "", gin.H{"email": "jack@example.com", "password": "password"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users", "", `{"email": "will@example.com", "password": "password", "is_admin": true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, decode[userResponse](t, rec).IsAdmin)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPost, "/api/login", "", gin.H{"username": "jack@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.login(t, "jack@example.com")

	rec = s.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(totalCountHeader))
	assert.Len(t, decode[[]userResponse](t, rec), 2)

	rec = s.do(t, http.MethodGet, "/api/users/"+user.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jack@example.com", decode[userResponse](t, rec).Email)
}

func TestUserUpdateAuthorization(t *testing.T) {
	s := newTestServer(t, nil)
	jack := s.signUp(t, "jack@example.com")
	will := s.signUp(t, "will@example.com")

	_, err := s.users.Create(context.Background(), services.CreateUserParams{
		Email:    "admin@example.com",
		Password: "password",
		IsAdmin:  true,
	})
	require.NoError(t, err)

	jackToken := s.login(t, "jack@example.com")
	adminToken := s.login(t, "admin@example.com")

	rec := s.do(t, http.MethodPut, "/api/users/"+will.ID, jackToken, gin.H{"first_name": "Hacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+will.ID, jackToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/users/"+jack.ID, jackToken, gin.H{"first_name": "Jack", "last_name": "Sparrow"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/users/"+jack.ID, jackToken, `{"last_name": null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[userResponse](t, rec)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Jack", *updated.FirstName)
	assert.Nil(t, updated.LastName)

	rec = s.do(t, http.MethodPut, "/api/users/"+jack.ID, jackToken, `{"email": null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/users/"+will.ID, adminToken, gin.H{"first_name": "William"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+will.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users/"+will.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletedUserTokenIsRejected(t *testing.T) {
	s := newTestServer(t, nil)
	jack := s.signUp(t, "jack@example.com")
	token := s.login(t, "jack@example.com")

	rec := s.do(t, http.MethodDelete, "/api/users/"+jack.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	jack := s.signUp(t, "jack@example.com")
	token := s.login(t, "jack@example.com")

	rec := s.do(t, http.MethodPost, "/api/task_statuses", token, gin.H{"name": "Draft", "slug": "draft"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decode[taskStatusResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/api/task_statuses", token, gin.H{"name": "Published", "slug": "published"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/labels", token, gin.H{"name": "bug"})
	require.Equal(t, http.StatusCreated, rec.Code)
	bug := decode[labelResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/api/tasks", token, gin.H{
		"title":          "Fix login",
		"content":        "Steps to reproduce",
		"index":          3,
		"status":         "draft",
		"assignee_id":    jack.ID,
		"task_label_ids": []string{bug.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fix := decode[taskResponse](t, rec)
	assert.Equal(t, "draft", fix.Status)
	assert.Equal(t, []string{bug.ID}, fix.TaskLabelIDs)

	rec = s.do(t, http.MethodPost, "/api/tasks", token, gin.H{"title": "Write docs", "status": "published"})
	require.Equal(t, http.StatusCreated, rec.Code)
	docs := decode[taskResponse](t, rec)
	assert.Empty(t, docs.TaskLabelIDs)
	assert.NotNil(t, docs.TaskLabelIDs)

	rec = s.do(t, http.MethodPost, "/api/tasks", token, gin.H{"title": "Ghost", "status": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/tasks?titleCont=FIX&status=draft&labelId="+bug.ID+"&assigneeId="+jack.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(totalCountHeader))
	listed := decode[[]taskResponse](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, fix.ID, listed[0].ID)

	rec = s.do(t, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get(totalCountHeader))

	rec = s.do(t, http.MethodPut, "/api/tasks/"+fix.ID, token, `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fix.Content, decode[taskResponse](t, rec).Content)

	rec = s.do(t, http.MethodPut, "/api/tasks/"+fix.ID, token, `{"content": null, "task_label_ids": [], "status": "published"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[taskResponse](t, rec)
	assert.Nil(t, updated.Content)
	assert.Empty(t, updated.TaskLabelIDs)
	assert.Equal(t, "published", updated.Status)
	assert.Equal(t, fix.Title, updated.Title)
	require.NotNil(t, updated.AssigneeID)

	rec = s.do(t, http.MethodPut, "/api/tasks/"+fix.ID, token, `{"title": null}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/tasks/"+fix.ID, token, `{"title": "Renamed", "task_label_ids": ["missing"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/tasks/"+fix.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fix login", decode[taskResponse](t, rec).Title)

	rec = s.do(t, http.MethodDelete, "/api/task_statuses/"+draft.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/"+jack.ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/tasks/"+fix.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/tasks/"+fix.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLabelAndStatusErrors(t *testing.T) {
	s := newTestServer(t, nil)
	s.signUp(t, "jack@example.com")
	token := s.login(t, "jack@example.com")

	rec := s.do(t, http.MethodPost, "/api/labels", token, `{"name": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/labels", token, gin.H{"name": "ab"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/task_statuses", token, gin.H{"name": "Draft", "slug": "Not A Slug"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/labels", token, gin.H{"name": "feature"})
	require.Equal(t, http.StatusCreated, rec.Code)
	feature := decode[labelResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/api/labels", token, gin.H{"name": "feature"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/labels/"+feature.ID, token, gin.H{"name": "enhancement"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "enhancement", decode[labelResponse](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/labels", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(totalCountHeader))

	rec = s.do(t, http.MethodGet, "/api/task_statuses/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/labels/"+feature.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s = newTestServer(t, pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	}))
	rec = s.do(t, http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
