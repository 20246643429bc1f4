package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/crud"
	"tours-backend/internal/shared/middleware"
	"tours-backend/internal/shared/response"
)

// UserHandler serves the account endpoints (/me, /updateMe, /deleteMe) and
// the admin CRUD routes.
type UserHandler struct {
	*crud.Handlers[user.User, user.CreateUserRequest, user.UpdateUserRequest]
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{
		Handlers: crud.New[user.User, user.CreateUserRequest, user.UpdateUserRequest](service),
		service:  service,
	}
}

// CreateUser refuses account creation outside signup.
func (h *UserHandler) CreateUser(c *gin.Context) {
	response.Fail(c, user.ErrUseSignup)
}

// GetMe points the :id parameter at the current user so GetOne can serve
// /me. Requires Protect.
func (h *UserHandler) GetMe(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, user.ErrNotLoggedIn)
		return
	}

	c.Params = append(c.Params, gin.Param{Key: "id", Value: current.ID.String()})
	c.Next()
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, user.ErrNotLoggedIn)
		return
	}

	var req user.UpdateMeRequest
	if err := crud.BindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	updated, err := h.service.UpdateMe(c.Request.Context(), current.ID, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Named(c, http.StatusOK, "user", updated)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, user.ErrNotLoggedIn)
		return
	}

	if err := h.service.DeleteMe(c.Request.Context(), current.ID); err != nil {
		response.Fail(c, err)
		return
	}

	response.NoContent(c)
}
