package handler

import (
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	service service.DashboardService
	log     *zap.SugaredLogger
}

func NewDashboardHandler(s service.DashboardService, log *zap.SugaredLogger) *DashboardHandler {
	return &DashboardHandler{service: s, log: log}
}

// GetDashboardStats returns per-collection totals
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}
