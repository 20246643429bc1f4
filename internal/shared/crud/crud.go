// Package crud builds the five standard REST handlers for any resource that
// can list, read, create, update and delete its entities.
package crud

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/query"
	"tours-backend/internal/shared/response"
)

// Validatable create inputs are checked before they reach the resource.
type Validatable interface {
	Validate() error
}

// Resource is the service side of a CRUD endpoint. T is the entity, C the
// create input and U the partial update input.
type Resource[T any, C Validatable, U any] interface {
	// Name is used in messages, e.g. "No tour found with that ID".
	Name() string
	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]T, error)
	Get(ctx context.Context, id uuid.UUID, populate ...string) (*T, error)
	Create(ctx context.Context, req C) (*T, error)
	Update(ctx context.Context, id uuid.UUID, req U) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type settings struct {
	scope    func(c *gin.Context) query.Scope
	populate []string
	idParam  string
	idField  string
}

type Option func(*settings)

// WithScope restricts listings, e.g. to the reviews of the tour in the path.
func WithScope(fn func(c *gin.Context) query.Scope) Option {
	return func(s *settings) { s.scope = fn }
}

// WithPopulate names the relations expanded on read-one.
func WithPopulate(relations ...string) Option {
	return func(s *settings) { s.populate = relations }
}

// WithIDParam changes the path parameter holding the entity id (default "id").
func WithIDParam(name string) Option {
	return func(s *settings) { s.idParam = name }
}

// Handlers holds the generated gin handlers for one resource.
type Handlers[T any, C Validatable, U any] struct {
	res          Resource[T, C, U]
	cfg          settings
	beforeCreate func(c *gin.Context, req *C) error
}

func New[T any, C Validatable, U any](res Resource[T, C, U], opts ...Option) *Handlers[T, C, U] {
	cfg := settings{idParam: "id", idField: "id"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Handlers[T, C, U]{res: res, cfg: cfg}
}

// BeforeCreate registers a hook that may fill the create input from the
// request context before validation.
func (h *Handlers[T, C, U]) BeforeCreate(fn func(c *gin.Context, req *C) error) *Handlers[T, C, U] {
	h.beforeCreate = fn
	return h
}

func (h *Handlers[T, C, U]) GetAll(c *gin.Context) {
	opts, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		response.Fail(c, err)
		return
	}

	var scope query.Scope
	if h.cfg.scope != nil {
		scope = h.cfg.scope(c)
	}

	items, err := h.res.List(c.Request.Context(), scope, opts)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}

	data, err := query.Project(items, opts.Fields, h.cfg.idField)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, data, len(items))
}

func (h *Handlers[T, C, U]) GetOne(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	entity, err := h.res.Get(c.Request.Context(), id, h.cfg.populate...)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if entity == nil {
		response.Fail(c, h.notFound())
		return
	}
	response.Data(c, http.StatusOK, entity)
}

func (h *Handlers[T, C, U]) CreateOne(c *gin.Context) {
	var req C
	if err := BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	if h.beforeCreate != nil {
		if err := h.beforeCreate(c, &req); err != nil {
			response.Fail(c, err)
			return
		}
	}

	if err := req.Validate(); err != nil {
		response.Fail(c, err)
		return
	}

	entity, err := h.res.Create(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Data(c, http.StatusCreated, entity)
}

func (h *Handlers[T, C, U]) UpdateOne(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	var req U
	if err := BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	entity, err := h.res.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if entity == nil {
		response.Fail(c, h.notFound())
		return
	}
	response.Data(c, http.StatusOK, entity)
}

func (h *Handlers[T, C, U]) DeleteOne(c *gin.Context) {
	id, ok := h.id(c)
	if !ok {
		return
	}

	if err := h.res.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handlers[T, C, U]) id(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param(h.cfg.idParam)
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Fail(c, apperror.InvalidID(raw))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers[T, C, U]) notFound() error {
	return apperror.NotFound(fmt.Sprintf("No %s found with that ID", h.res.Name()))
}

// BindJSON decodes the request body. Oversized bodies keep their
// *http.MaxBytesError so they surface as 413; anything else is a 400.
func BindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return apperror.BadRequest("Invalid request body").WithErr(err)
}
