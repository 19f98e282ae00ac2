package handler

import (
	"crypto-macro-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer    trace.Tracer
	dashboard *service.DashboardService
}

func New(tracer trace.Tracer, dashboard *service.DashboardService) *Handler {
	return &Handler{
		tracer:    tracer,
		dashboard: dashboard,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/m2", h.GetGlobalM2)
	r.GET("/api/market-caps", h.GetMarketCaps)
	r.GET("/api/mvrv", h.GetMVRV)
	r.GET("/api/ahr999", h.GetAHR999)
	r.GET("/api/etf-flows/:asset", h.GetETFFlows)
	r.GET("/api/treasuries/:asset", h.GetTreasuries)
	r.GET("/api/dashboard", h.GetDashboard)
}
