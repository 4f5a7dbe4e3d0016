package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
	"go-media-cms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPosts struct {
	err   error
	doc   *model.Post
	docs  []model.Post
	total int64
}

func (s *stubPosts) List(ctx context.Context, requester *model.User, page repository.Page) ([]model.Post, int64, error) {
	return s.docs, s.total, s.err
}

func (s *stubPosts) Get(ctx context.Context, requester *model.User, id uuid.UUID) (*model.Post, error) {
	return s.doc, s.err
}

func (s *stubPosts) GetBySlug(ctx context.Context, requester *model.User, slug string) (*model.Post, error) {
	return s.doc, s.err
}

func (s *stubPosts) Create(ctx context.Context, requester *model.User, doc *model.Post) (*model.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	return doc, nil
}

func (s *stubPosts) Update(ctx context.Context, requester *model.User, id uuid.UUID, doc *model.Post) (*model.Post, error) {
	return doc, s.err
}

func (s *stubPosts) Delete(ctx context.Context, requester *model.User, id uuid.UUID) error {
	return s.err
}

func (s *stubPosts) RecordView(ctx context.Context, requester *model.User, id uuid.UUID) (int64, error) {
	return 7, s.err
}

func newPostsApp(stub *stubPosts) *fiber.App {
	app := fiber.New()
	NewContentHandler[model.Post](stub, zap.NewNop().Sugar()).Register(app.Group("/posts"))
	return app
}

func TestContentHandler_ErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrForbidden, fiber.StatusForbidden},
		{service.ErrNotFound, fiber.StatusNotFound},
		{fmt.Errorf("%w: title", service.ErrValidation), fiber.StatusBadRequest},
		{fmt.Errorf("%w: %w", access.ErrBootstrapUnavailable, errors.New("db")), fiber.StatusServiceUnavailable},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := newPostsApp(&stubPosts{err: tc.err})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/posts/"+uuid.NewString(), nil))

			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestContentHandler_InternalErrorsAreNotLeaked(t *testing.T) {
	app := newPostsApp(&stubPosts{err: errors.New("pq: relation does not exist")})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/posts/"+uuid.NewString(), nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "pq:")
}

func TestContentHandler_InvalidID(t *testing.T) {
	app := newPostsApp(&stubPosts{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/posts/not-a-uuid", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestContentHandler_List(t *testing.T) {
	app := newPostsApp(&stubPosts{docs: []model.Post{{Title: "A"}}, total: 25})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/posts?page=2&limit=10", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Docs       []model.Post `json:"docs"`
		TotalDocs  int64        `json:"totalDocs"`
		Page       int          `json:"page"`
		TotalPages int          `json:"totalPages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Docs, 1)
	assert.Equal(t, int64(25), body.TotalDocs)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 3, body.TotalPages)
}

func TestContentHandler_CreateAndViews(t *testing.T) {
	app := newPostsApp(&stubPosts{})

	req := httptest.NewRequest(fiber.MethodPost, "/posts", strings.NewReader(`{"title":"Hello","_status":"published"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/posts/"+uuid.NewString()+"/views", nil))
	require.NoError(t, err)
	var views struct{ Views int64 }
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.Equal(t, int64(7), views.Views)
}

func TestRoleHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/roles", NewRoleHandler().GetRoles)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/roles", nil))
	require.NoError(t, err)

	var roles []model.RoleInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roles))
	assert.Len(t, roles, len(model.Roles))
}

func TestRouter_Mount(t *testing.T) {
	log := zap.NewNop().Sugar()
	router := &Router{
		Auth:      NewAuthHandler(nil, "media-token", false, log),
		Users:     NewUserHandler(nil, log),
		Roles:     NewRoleHandler(),
		Catalog:   NewCatalogHandler(nil, log),
		Dashboard: NewDashboardHandler(nil, log),
		Movies:    NewContentHandler[model.Movie](nil, log),
		Series:    NewContentHandler[model.Series](nil, log),
		Episodes:  NewContentHandler[model.Episode](nil, log),
		Posts:     NewContentHandler[model.Post](&stubPosts{}, log),
		RequireAuth: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		},
		OptionalAuth: func(c *fiber.Ctx) error { return c.Next() },
	}
	app := fiber.New()
	router.Mount(app.Group("/api/v1"))

	cases := []struct {
		path string
		want int
	}{
		{"/api/v1/posts", fiber.StatusOK},
		{"/api/v1/roles", fiber.StatusOK},
		{"/api/v1/users", fiber.StatusUnauthorized},
		{"/api/v1/users/" + uuid.NewString(), fiber.StatusUnauthorized},
		{"/api/v1/dashboard/stats", fiber.StatusUnauthorized},
		{"/api/v1/does-not-exist", fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil))

			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
