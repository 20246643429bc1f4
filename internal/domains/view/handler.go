// Package view renders the server-side pages of the site.
package view

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tours-backend/internal/domains/tour/model"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/shared/middleware"
	"tours-backend/internal/shared/query"
	"tours-backend/internal/shared/response"
)

// ErrorTemplate is the page the error middleware renders outside /api.
const ErrorTemplate = "error.tmpl"

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"firstName": func(name string) string {
		if first, _, ok := strings.Cut(name, " "); ok {
			return first
		}
		return name
	},
	"paragraphs": func(text string) []string {
		var out []string
		for _, p := range strings.Split(text, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

// Templates parses the embedded pages; install with gin's SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
}

// TourReader is what the pages need from the tour service.
type TourReader interface {
	List(ctx context.Context, scope query.Scope, opts *query.Options) ([]model.Tour, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tour, error)
}

type Handler struct {
	tours TourReader
}

func NewHandler(tours TourReader) *Handler {
	return &Handler{tours: tours}
}

func (h *Handler) Overview(c *gin.Context) {
	opts := &query.Options{Page: query.DefaultPage, Limit: query.DefaultLimit}
	tours, err := h.tours.List(c.Request.Context(), nil, opts)
	if err != nil {
		response.Fail(c, err)
		return
	}
	render(c, "overview.tmpl", "All Tours", gin.H{"Tours": tours})
}

func (h *Handler) Tour(c *gin.Context) {
	t, err := h.tours.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	render(c, "tour.tmpl", t.Name+" Tour", gin.H{"Tour": t})
}

func (h *Handler) Login(c *gin.Context) {
	render(c, "login.tmpl", "Log into your account", nil)
}

// Account requires Protect.
func (h *Handler) Account(c *gin.Context) {
	if _, ok := middleware.CurrentUser(c); !ok {
		response.Fail(c, user.ErrNotLoggedIn)
		return
	}
	render(c, "account.tmpl", "Your account", nil)
}

// render adds the page title and the logged-in user, if any.
func render(c *gin.Context, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	if u, ok := middleware.CurrentUser(c); ok {
		data["User"] = u
	}
	c.HTML(http.StatusOK, name, data)
}
