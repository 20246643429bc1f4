package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tours-backend/internal/domains/tour/model"
	"tours-backend/internal/domains/tour/service"
	"tours-backend/internal/shared/crud"
	"tours-backend/internal/shared/query"
	"tours-backend/internal/shared/response"
)

// topCheap is the query behind /top-5-cheap.
var topCheap = map[string]string{
	"limit":  "5",
	"sort":   "-ratingsAverage,price",
	"fields": "name,price,ratingsAverage,summary,difficulty",
}

// IDParam names the tour id in paths. It matches the nested review routes
// under /tours/:tourId/reviews.
const IDParam = "tourId"

// TourHandler serves /tours: the generic CRUD routes plus the aggregates
// and geo lookups.
type TourHandler struct {
	*crud.Handlers[model.Tour, model.CreateTourRequest, model.UpdateTourRequest]
	service service.ServiceInterface
}

func NewTourHandler(svc service.ServiceInterface) *TourHandler {
	return &TourHandler{
		Handlers: crud.New[model.Tour, model.CreateTourRequest, model.UpdateTourRequest](
			svc, crud.WithPopulate(service.PopulateReviews), crud.WithIDParam(IDParam),
		),
		service: svc,
	}
}

// AliasTopTours presets the listing query; chain it before GetAll.
func (h *TourHandler) AliasTopTours(c *gin.Context) {
	c.Request.URL.RawQuery = query.Preset(c.Request.URL.Query(), topCheap).Encode()
	c.Next()
}

func (h *TourHandler) GetTourStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Named(c, http.StatusOK, "stats", stats)
}

func (h *TourHandler) GetMonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Fail(c, model.ErrBadYear)
		return
	}

	plan, err := h.service.MonthlyPlan(c.Request.Context(), year)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Named(c, http.StatusOK, "plan", plan)
}

// GetToursWithin serves /tours-within/:distance/center/:latlng/unit/:unit.
func (h *TourHandler) GetToursWithin(c *gin.Context) {
	center, err := model.ParseLatLng(c.Param("latlng"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		response.Fail(c, model.ErrBadRadius)
		return
	}

	tours, err := h.service.Within(c.Request.Context(), distance, center, model.ParseUnit(c.Param("unit")))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.List(c, tours, len(tours))
}

// GetDistances serves /distances/:latlng/unit/:unit.
func (h *TourHandler) GetDistances(c *gin.Context) {
	center, err := model.ParseLatLng(c.Param("latlng"))
	if err != nil {
		response.Fail(c, err)
		return
	}

	distances, err := h.service.Distances(c.Request.Context(), center, model.ParseUnit(c.Param("unit")))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Named(c, http.StatusOK, "data", distances)
}
