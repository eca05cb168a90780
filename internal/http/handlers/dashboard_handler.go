package handlers

import (
	applog "authentiq/internal/log"
	"authentiq/internal/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	Registry *services.RegistryService
}

// GET /admin-dashboard/
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	sum, err := h.Registry.DashboardSummary(c.UserContext(), sessionOf(c))
	if err != nil {
		if isForbidden(err) {
			return forbidden(c)
		}
		applog.Error(c, "dashboard.admin.fail", err, nil)
		return err
	}
	return render(c, "admin_dashboard", fiber.Map{"Products": sum.RecentProducts, "TotalProducts": sum.TotalCount})
}

// GET /user-dashboard/
func (h *DashboardHandler) User(c *fiber.Ctx) error {
	products, err := h.Registry.RecentProducts(c.UserContext(), sessionOf(c))
	if err != nil {
		applog.Error(c, "dashboard.user.fail", err, nil)
		return err
	}
	return render(c, "user_dashboard", fiber.Map{"Products": products})
}
