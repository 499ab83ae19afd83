package handlers

import (
	"net/http"
	"strconv"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AdminHandlers serves catalog writes under /api/admin. Routes are mounted
// behind the admin auth middleware.
type AdminHandlers struct {
	adminSvc    services.CatalogAdminService
	activitySvc services.ActivityLogService
}

func NewAdminHandlers(adminSvc services.CatalogAdminService, activitySvc services.ActivityLogService) *AdminHandlers {
	return &AdminHandlers{adminSvc: adminSvc, activitySvc: activitySvc}
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, common.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

// hardDelete reads ?hard=true. Anything else means a soft delete.
func hardDelete(c echo.Context) bool {
	hard, _ := strconv.ParseBool(c.QueryParam("hard"))
	return hard
}

func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return common.NewValidationError("request", "invalid request format")
	}
	return c.Validate(dst)
}

func deleted(c echo.Context, hard bool) error {
	mode := "soft"
	if hard {
		mode = "hard"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "mode": mode})
}

// Categories

func (h *AdminHandlers) ListCategories(c echo.Context) error {
	categories, err := h.adminSvc.ListCategories(c.Request().Context())
	if err != nil {
		return common.SendError(c, "Categories", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": categories})
}

func (h *AdminHandlers) CreateCategory(c echo.Context) error {
	var req models.CategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Category", err)
	}
	category, err := h.adminSvc.CreateCategory(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, "Category", err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *AdminHandlers) UpdateCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Category", err)
	}
	var req models.CategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Category", err)
	}
	category, err := h.adminSvc.UpdateCategory(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, "Category", err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *AdminHandlers) DeleteCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Category", err)
	}
	hard := hardDelete(c)
	if err := h.adminSvc.DeleteCategory(c.Request().Context(), id, hard); err != nil {
		return common.SendError(c, "Category", err)
	}
	return deleted(c, hard)
}

// Subcategories

func (h *AdminHandlers) ListSubcategories(c echo.Context) error {
	categoryID, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Subcategories", err)
	}
	subs, err := h.adminSvc.ListSubcategories(c.Request().Context(), categoryID)
	if err != nil {
		return common.SendError(c, "Subcategories", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": subs})
}

func (h *AdminHandlers) CreateSubcategory(c echo.Context) error {
	var req models.SubcategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	sub, err := h.adminSvc.CreateSubcategory(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *AdminHandlers) UpdateSubcategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	var req models.SubcategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	sub, err := h.adminSvc.UpdateSubcategory(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *AdminHandlers) DeleteSubcategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	hard := hardDelete(c)
	if err := h.adminSvc.DeleteSubcategory(c.Request().Context(), id, hard); err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	return deleted(c, hard)
}

// Sub-subcategories

func (h *AdminHandlers) ListSubSubcategories(c echo.Context) error {
	subcategoryID, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Sub-subcategories", err)
	}
	leaves, err := h.adminSvc.ListSubSubcategories(c.Request().Context(), subcategoryID)
	if err != nil {
		return common.SendError(c, "Sub-subcategories", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": leaves})
}

func (h *AdminHandlers) CreateSubSubcategory(c echo.Context) error {
	var req models.SubSubcategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Sub-subcategory", err)
	}
	leaf, err := h.adminSvc.CreateSubSubcategory(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, "Sub-subcategory", err)
	}
	return c.JSON(http.StatusCreated, leaf)
}

func (h *AdminHandlers) UpdateSubSubcategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Sub-subcategory", err)
	}
	var req models.SubSubcategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Sub-subcategory", err)
	}
	leaf, err := h.adminSvc.UpdateSubSubcategory(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, "Sub-subcategory", err)
	}
	return c.JSON(http.StatusOK, leaf)
}

func (h *AdminHandlers) DeleteSubSubcategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Sub-subcategory", err)
	}
	hard := hardDelete(c)
	if err := h.adminSvc.DeleteSubSubcategory(c.Request().Context(), id, hard); err != nil {
		return common.SendError(c, "Sub-subcategory", err)
	}
	return deleted(c, hard)
}

// Products

type AdminListRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *AdminHandlers) ListProducts(c echo.Context) error {
	var req AdminListRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	products, err := h.adminSvc.ListProducts(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendError(c, "Products", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    req.Limit,
		"offset":   req.Offset,
	})
}

func (h *AdminHandlers) CreateProduct(c echo.Context) error {
	var req models.ProductInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Product", err)
	}
	product, err := h.adminSvc.CreateProduct(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, "Product", err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *AdminHandlers) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Product", err)
	}
	var req models.ProductInput
	if err := bindAndValidate(c, &req); err != nil {
		return common.SendError(c, "Product", err)
	}
	product, err := h.adminSvc.UpdateProduct(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, "Product", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *AdminHandlers) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return common.SendError(c, "Product", err)
	}
	hard := hardDelete(c)
	if err := h.adminSvc.DeleteProduct(c.Request().Context(), id, hard); err != nil {
		return common.SendError(c, "Product", err)
	}
	return deleted(c, hard)
}

// Activity

func (h *AdminHandlers) ListActivity(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := h.activitySvc.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return common.SendError(c, "Activity", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": entries})
}
