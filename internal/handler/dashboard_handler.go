package handler

import (
	"protonshop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	poller  *service.DashboardPoller
}

func NewDashboardHandler(s service.DashboardService, poller *service.DashboardPoller) *DashboardHandler {
	return &DashboardHandler{service: s, poller: poller}
}

// GetDashboard computes the snapshot from fresh reads
// GET /api/v1/admin/dashboard
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	snap, err := h.service.Snapshot(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(snap)
}

// Refresh recomputes the snapshot and signals connected admins
// POST /api/v1/admin/dashboard/refresh
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	snap, err := h.poller.Refresh(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(snap)
}
