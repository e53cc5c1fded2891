package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "upiqr/internal/api/context"
	"upiqr/internal/api/handlers"
	"upiqr/internal/api/middleware"
)

type Dependencies struct {
	UPIHandler       *handlers.UPIHandler
	LinkHandler      *handlers.LinkHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	RedirectHandler  *handlers.RedirectHandler
	HealthHandler    *handlers.HealthHandler
	MetricsHandler   *handlers.MetricsHandler
	AuthMiddleware   *middleware.AuthMiddleware
	RateLimiter      *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	rl := deps.RateLimiter
	authMid := deps.AuthMiddleware
	write := middleware.RequireScope("links:write")
	read := middleware.RequireScope("links:read")

	// Public redirect
	router.GET("/p/:short_code",
		chain(deps.RedirectHandler.Handle, rl.Middleware(middleware.LimitRedirect)))

	// Ops
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Stateless UPI endpoints
	router.POST("/api/v1/upi/link",
		chain(deps.UPIHandler.BuildLink, rl.Middleware(middleware.LimitAPIWrite)))
	router.POST("/api/v1/upi/qr",
		chain(deps.UPIHandler.RenderQR, rl.Middleware(middleware.LimitRender)))

	// Saved payment links
	router.POST("/api/v1/links",
		chain(deps.LinkHandler.Create, rl.Middleware(middleware.LimitAPIWrite), authMid.Handle, write))
	router.GET("/api/v1/links",
		chain(deps.LinkHandler.List, rl.Middleware(middleware.LimitAPIRead), authMid.Handle, read))
	router.GET("/api/v1/links/:link_id",
		chain(deps.LinkHandler.Get, rl.Middleware(middleware.LimitAPIRead), authMid.Handle, read))
	router.PATCH("/api/v1/links/:link_id",
		chain(deps.LinkHandler.Update, rl.Middleware(middleware.LimitAPIWrite), authMid.Handle, write))
	router.DELETE("/api/v1/links/:link_id",
		chain(deps.LinkHandler.Delete, rl.Middleware(middleware.LimitAPIWrite), authMid.Handle, write))
	router.GET("/api/v1/links/:link_id/qr",
		chain(deps.LinkHandler.GetQRCode, rl.Middleware(middleware.LimitRender), authMid.Handle, read))

	// Analytics
	router.GET("/api/v1/links/:link_id/analytics",
		chain(deps.AnalyticsHandler.GetLinkAnalytics, rl.Middleware(middleware.LimitAPIRead), authMid.Handle, read))
	router.GET("/api/v1/links/:link_id/scans",
		chain(deps.AnalyticsHandler.GetLinkScans, rl.Middleware(middleware.LimitAPIRead), authMid.Handle, read))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
