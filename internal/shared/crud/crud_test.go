package crud_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/crud"
	"tours-backend/internal/shared/middleware"
	"tours-backend/internal/shared/query"
)

type note struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Parent string    `json:"parent"`
}

type createNote struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Parent string `json:"parent"`
}

func (r createNote) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("A note must have a title")),
	)
}

type updateNote struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// noteStore returns (nil, nil) for unknown ids on reads so the factory's
// own NotFound path is exercised.
type noteStore struct {
	mu        sync.Mutex
	notes     map[uuid.UUID]*note
	lastScope query.Scope
	populated []string
}

func newNoteStore() *noteStore {
	return &noteStore{notes: map[uuid.UUID]*note{}}
}

func (s *noteStore) Name() string { return "note" }

func (s *noteStore) List(_ context.Context, scope query.Scope, _ *query.Options) ([]note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScope = scope

	out := []note{}
	for _, n := range s.notes {
		if parent, ok := scope["parent"]; ok && n.Parent != parent {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (s *noteStore) Get(_ context.Context, id uuid.UUID, populate ...string) (*note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.populated = populate
	return s.notes[id], nil
}

func (s *noteStore) Create(_ context.Context, req createNote) (*note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := &note{ID: uuid.New(), Title: req.Title, Body: req.Body, Parent: req.Parent}
	s.notes[n.ID] = n
	return n, nil
}

func (s *noteStore) Update(_ context.Context, id uuid.UUID, req updateNote) (*note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok {
		return nil, nil
	}
	if req.Title != nil {
		n.Title = *req.Title
	}
	if req.Body != nil {
		n.Body = *req.Body
	}
	return n, nil
}

func (s *noteStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return apperror.NotFound("No note found with that ID")
	}
	delete(s.notes, id)
	return nil
}

func setup(store *noteStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := crud.New[note, createNote, updateNote](store,
		crud.WithPopulate("comments"),
		crud.WithScope(func(c *gin.Context) query.Scope {
			if parent := c.Param("parentId"); parent != "" {
				return query.Scope{"parent": parent}
			}
			return nil
		}),
	).BeforeCreate(func(c *gin.Context, req *createNote) error {
		if req.Parent == "" {
			req.Parent = c.Param("parentId")
		}
		return nil
	})

	r := gin.New()
	r.Use(middleware.ErrorHandler(middleware.ErrorHandlerConfig{}))
	r.GET("/notes", h.GetAll)
	r.POST("/notes", h.CreateOne)
	r.GET("/notes/:id", h.GetOne)
	r.PATCH("/notes/:id", h.UpdateOne)
	r.DELETE("/notes/:id", h.DeleteOne)
	r.GET("/parents/:parentId/notes", h.GetAll)
	r.POST("/parents/:parentId/notes", h.CreateOne)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results"`
	Message string `json:"message"`
	Data    struct {
		Data json.RawMessage `json:"data"`
	} `json:"data"`
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreateAndGetOne(t *testing.T) {
	store := newNoteStore()
	r := setup(store)

	rec := do(r, http.MethodPost, "/notes", `{"title":"Packing list","body":"boots"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created note
	require.NoError(t, json.Unmarshal(parse(t, rec).Data.Data, &created))
	assert.Equal(t, "Packing list", created.Title)

	rec = do(r, http.MethodGet, "/notes/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", parse(t, rec).Status)
	assert.Equal(t, []string{"comments"}, store.populated)
}

func TestCreateRunsValidation(t *testing.T) {
	r := setup(newNoteStore())

	rec := do(r, http.MethodPost, "/notes", `{"body":"no title"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := parse(t, rec)
	assert.Equal(t, "fail", env.Status)
	assert.Contains(t, env.Message, "A note must have a title")
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	r := setup(newNoteStore())

	rec := do(r, http.MethodPost, "/notes", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOneInvalidID(t *testing.T) {
	r := setup(newNoteStore())

	rec := do(r, http.MethodGet, "/notes/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid id: not-a-uuid.", parse(t, rec).Message)
}

func TestGetOneNotFound(t *testing.T) {
	r := setup(newNoteStore())

	rec := do(r, http.MethodGet, "/notes/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No note found with that ID", parse(t, rec).Message)
}

func TestUpdateOne(t *testing.T) {
	store := newNoteStore()
	r := setup(store)
	n, _ := store.Create(context.Background(), createNote{Title: "Old", Body: "keep"})

	rec := do(r, http.MethodPatch, "/notes/"+n.ID.String(), `{"title":"New"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New", store.notes[n.ID].Title)
	assert.Equal(t, "keep", store.notes[n.ID].Body)

	rec = do(r, http.MethodPatch, "/notes/"+uuid.NewString(), `{"title":"New"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTwice(t *testing.T) {
	store := newNoteStore()
	r := setup(store)
	n, _ := store.Create(context.Background(), createNote{Title: "Temp"})

	rec := do(r, http.MethodDelete, "/notes/"+n.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(r, http.MethodDelete, "/notes/"+n.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No note found with that ID", parse(t, rec).Message)
}

func TestGetAllScopesNestedRoutes(t *testing.T) {
	store := newNoteStore()
	r := setup(store)

	rec := do(r, http.MethodPost, "/parents/p1/notes", `{"title":"Child"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, _ = store.Create(context.Background(), createNote{Title: "Other", Parent: "p2"})

	rec = do(r, http.MethodGet, "/parents/p1/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := parse(t, rec)
	require.NotNil(t, env.Results)
	assert.Equal(t, 1, *env.Results)
	assert.Equal(t, query.Scope{"parent": "p1"}, store.lastScope)

	rec = do(r, http.MethodGet, "/notes", "")
	assert.Equal(t, 2, *parse(t, rec).Results)
	assert.Nil(t, store.lastScope)
}

func TestGetAllProjectsFields(t *testing.T) {
	store := newNoteStore()
	r := setup(store)
	_, _ = store.Create(context.Background(), createNote{Title: "A", Body: "hidden"})

	rec := do(r, http.MethodGet, "/notes?fields=title", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(parse(t, rec).Data.Data, &items))
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "id")
	assert.Contains(t, items[0], "title")
	assert.NotContains(t, items[0], "body")
}

func TestGetAllEmptyListIsArray(t *testing.T) {
	r := setup(newNoteStore())

	rec := do(r, http.MethodGet, "/notes?page=9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := parse(t, rec)
	assert.Equal(t, 0, *env.Results)
	assert.JSONEq(t, `[]`, string(env.Data.Data))
}
