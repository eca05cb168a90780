package handlers

import (
	"errors"

	"authentiq/internal/domain"
	"authentiq/internal/services"

	"github.com/gofiber/fiber/v2"
)

type VerifyHandler struct {
	Verify *services.VerifyService
}

// GET /verify-product/
func (h *VerifyHandler) Form(c *fiber.Ctx) error {
	return render(c, "verify_product", fiber.Map{"Query": ""})
}

// POST /verify-product/
func (h *VerifyHandler) Check(c *fiber.Ctx) error {
	raw := c.FormValue("product_id")
	res, err := h.Verify.Verify(c.UserContext(), sessionOf(c), raw)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			c.Status(fiber.StatusBadRequest)
			return render(c, "verify_product", fiber.Map{"Query": "", "Flash": &Flash{Kind: flashError, Text: "Please enter a product ID."}})
		}
		return err
	}
	return render(c, "verify_product", fiber.Map{"Result": res, "Query": res.Query})
}
