package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	tourHandler "tours-backend/internal/domains/tour/handler"
	"tours-backend/internal/domains/user"
	"tours-backend/internal/domains/view"
	"tours-backend/internal/shared/apperror"
	"tours-backend/internal/shared/middleware"
	"tours-backend/internal/shared/response"
	"tours-backend/pkg/container"
)

func SetupRouter(c *container.Container, onPanic func(interface{})) *gin.Engine {
	router := gin.New()
	cfg := c.Config

	// Global middlewares
	router.Use(
		middleware.Recovery(onPanic),
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.Logger(),
		middleware.SecurityHeaders(),
		middleware.BodyLimit(cfg.App.BodyLimit),
		middleware.ErrorHandler(middleware.ErrorHandlerConfig{
			Production:    cfg.App.IsProduction(),
			ErrorTemplate: view.ErrorTemplate,
		}),
	)
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(c.Cache, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window))
	}
	router.SetHTMLTemplate(view.Templates())

	setupViewRoutes(router, c)

	api := router.Group("/api")

	v1 := api.Group("/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupTourRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupReviewRoutes(v1.Group("/reviews"), c)
	}

	router.NoRoute(func(ctx *gin.Context) {
		response.Fail(ctx, apperror.NotFound(fmt.Sprintf("Can't find %s on this server!", ctx.Request.URL.Path)))
	})

	return router
}

// ========================================
// TOUR ROUTES
// ========================================
func setupTourRoutes(v1 *gin.RouterGroup, c *container.Container) {
	h := c.TourHandler
	protect := middleware.Protect(c.AuthService)
	manage := middleware.Require(user.CapManageTours)

	tours := v1.Group("/tours")
	{
		tours.GET("/top-5-cheap", h.AliasTopTours, h.GetAll)
		tours.GET("/tour-stats", h.GetTourStats)
		tours.GET("/monthly-plan/:year", protect, middleware.Require(user.CapViewMonthlyPlan), h.GetMonthlyPlan)
		tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", h.GetToursWithin)
		tours.GET("/distances/:latlng/unit/:unit", h.GetDistances)

		tours.GET("", h.GetAll)
		tours.POST("", protect, manage, h.CreateOne)

		one := "/:" + tourHandler.IDParam
		tours.GET(one, h.GetOne)
		tours.PATCH(one, protect, manage, h.UpdateOne)
		tours.DELETE(one, protect, manage, h.DeleteOne)

		setupReviewRoutes(tours.Group(one+"/reviews"), c)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := c.AuthHandler
	users := c.UserHandler

	g := v1.Group("/users")
	{
		g.POST("/signup", auth.Signup)
		g.POST("/login", auth.Login)
		g.GET("/logout", auth.Logout)
		g.POST("/forgotPassword", auth.ForgotPassword)
		g.PATCH("/resetPassword/:token", auth.ResetPassword)
	}

	me := g.Group("", middleware.Protect(c.AuthService))
	{
		me.PATCH("/updateMyPassword", auth.UpdatePassword)
		me.GET("/me", users.GetMe, users.GetOne)
		me.PATCH("/updateMe", users.UpdateMe)
		me.DELETE("/deleteMe", users.DeleteMe)
	}

	admin := me.Group("", middleware.Require(user.CapManageUsers))
	{
		admin.GET("", users.GetAll)
		admin.POST("", users.CreateUser)
		admin.GET("/:id", users.GetOne)
		admin.PATCH("/:id", users.UpdateOne)
		admin.DELETE("/:id", users.DeleteOne)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
// mounted both at /reviews and at /tours/:tourId/reviews
func setupReviewRoutes(g *gin.RouterGroup, c *container.Container) {
	h := c.ReviewHandler
	g.Use(middleware.Protect(c.AuthService))

	g.GET("", h.GetAll)
	g.POST("", middleware.Require(user.CapWriteReview), h.CreateOne)
	g.GET("/:id", h.GetOne)
	g.PATCH("/:id", middleware.Require(user.CapEditReview), h.UpdateOne)
	g.DELETE("/:id", middleware.Require(user.CapEditReview), h.DeleteOne)
}

// ========================================
// VIEW ROUTES
// ========================================
func setupViewRoutes(router *gin.Engine, c *container.Container) {
	h := c.ViewHandler

	pages := router.Group("/", middleware.IsLoggedIn(c.AuthService))
	{
		pages.GET("", h.Overview)
		pages.GET("/tour/:slug", h.Tour)
		pages.GET("/login", h.Login)
	}
	router.GET("/me", middleware.Protect(c.AuthService), h.Account)
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		services := appCtx.Health(ctx)
		status := "ok"
		for _, s := range services {
			if s != "up" {
				status = "degraded"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  services,
		})
	}
}
