package handlers

import (
	"errors"
	"strconv"

	"authentiq/internal/domain"
	applog "authentiq/internal/log"
	"authentiq/internal/services"
	"authentiq/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Registry *services.RegistryService
}

func isForbidden(err error) bool {
	return errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthenticated)
}

func productForm(c *fiber.Ctx) domain.ProductInput {
	return domain.ProductInput{
		Name:        c.FormValue("name"),
		ProductID:   c.FormValue("product_id"),
		Description: c.FormValue("description"),
	}
}

// formErrors turns a registry error into per-field messages and a status.
// ok is false for errors that are not the user's fault.
func formErrors(err error) (map[string]string, int, bool) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Fields, fiber.StatusBadRequest, true
	case errors.Is(err, domain.ErrDuplicateKey):
		return map[string]string{"product_id": "Product with this Product ID (Unique Code) already exists."}, fiber.StatusConflict, true
	}
	return nil, 0, false
}

func pathID(c *fiber.Ctx) (int64, bool) {
	raw, ok := validate.ID(c.Params("id"))
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

// GET /add-product/
func (h *ProductHandler) AddForm(c *fiber.Ctx) error {
	return render(c, "add_product", fiber.Map{"Form": domain.ProductInput{}, "Errors": map[string]string{}})
}

// POST /add-product/
func (h *ProductHandler) Add(c *fiber.Ctx) error {
	in := productForm(c)
	p, err := h.Registry.AddProduct(c.UserContext(), sessionOf(c), in)
	if err != nil {
		if isForbidden(err) {
			return forbidden(c)
		}
		errs, status, ok := formErrors(err)
		if !ok {
			applog.Error(c, "product.add.fail", err, map[string]any{"product_id": in.ProductID})
			return err
		}
		applog.Security(c, "validation.fail", map[string]any{"form": "add_product", "fields": errs})
		c.Status(status)
		return render(c, "add_product", fiber.Map{"Form": in, "Errors": errs})
	}
	applog.Audit(c, "product.add", map[string]any{"id": p.ID, "product_id": p.ProductID})
	setFlash(c, flashSuccess, `Product "`+p.Name+`" added successfully!`)
	return c.Redirect("/view-products/")
}

// GET /view-products/?q=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := validate.Q(c.Query("q"))
	products, err := h.Registry.ListProducts(c.UserContext(), sessionOf(c), q)
	if err != nil {
		if isForbidden(err) {
			return forbidden(c)
		}
		applog.Error(c, "product.list.fail", err, map[string]any{"q": q})
		return err
	}
	return render(c, "view_products", fiber.Map{"Products": products, "Query": q, "Count": len(products)})
}

// GET /update-product/:id/
func (h *ProductHandler) EditForm(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c, "Product not found")
	}
	p, err := h.Registry.GetProduct(c.UserContext(), sessionOf(c), id)
	switch {
	case err == nil:
	case isForbidden(err):
		return forbidden(c)
	case errors.Is(err, domain.ErrNotFound):
		return notFound(c, "Product not found")
	default:
		return err
	}
	form := domain.ProductInput{Name: p.Name, ProductID: p.ProductID, Description: p.Description}
	return render(c, "update_product", fiber.Map{"Product": p, "Form": form, "Errors": map[string]string{}})
}

// POST /update-product/:id/
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return notFound(c, "Product not found")
	}
	in := productForm(c)
	p, err := h.Registry.UpdateProduct(c.UserContext(), sessionOf(c), id, in)
	if err != nil {
		switch {
		case isForbidden(err):
			return forbidden(c)
		case errors.Is(err, domain.ErrNotFound):
			return notFound(c, "Product not found")
		}
		errs, status, ok := formErrors(err)
		if !ok {
			applog.Error(c, "product.update.fail", err, map[string]any{"id": id})
			return err
		}
		applog.Security(c, "validation.fail", map[string]any{"form": "update_product", "fields": errs})
		c.Status(status)
		return render(c, "update_product", fiber.Map{"Product": domain.Product{ID: id}, "Form": in, "Errors": errs})
	}
	applog.Audit(c, "product.update", map[string]any{"id": p.ID, "product_id": p.ProductID})
	setFlash(c, flashSuccess, `Product "`+p.Name+`" updated successfully!`)
	return c.Redirect("/view-products/")
}
