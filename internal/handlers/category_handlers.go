package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/menu"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// SourceHeader reports whether a hierarchy read came from the live store,
// the last cached copy, or the static fallback tree.
const SourceHeader = "X-Catalog-Source"

// CategoryHandlers serves the public category tree.
type CategoryHandlers struct {
	hierarchy services.HierarchyService
}

func NewCategoryHandlers(hierarchy services.HierarchyService) *CategoryHandlers {
	return &CategoryHandlers{hierarchy: hierarchy}
}

type HierarchyRequest struct {
	Category string `query:"category"`
}

func writeHierarchy(c echo.Context, h *models.Hierarchy) error {
	c.Response().Header().Set(SourceHeader, string(h.Source))
	if h.Categories == nil {
		h.Categories = []*models.Category{}
	}
	return c.JSON(http.StatusOK, h)
}

// ListCategories returns active top-level categories without children.
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	result, err := h.hierarchy.Categories(c.Request().Context())
	if err != nil {
		return common.SendError(c, "Categories", err)
	}
	return writeHierarchy(c, result)
}

// GetHierarchy returns the full tree, or one category's subtree with ?category=slug.
// It answers 200 even when the store is down; the source header tells the
// caller which copy was served.
func (h *CategoryHandlers) GetHierarchy(c echo.Context) error {
	var req HierarchyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	ctx := c.Request().Context()
	var (
		result *models.Hierarchy
		err    error
	)
	if req.Category != "" {
		result, err = h.hierarchy.Subtree(ctx, req.Category)
	} else {
		result, err = h.hierarchy.Tree(ctx)
	}
	if err != nil {
		return common.SendError(c, "Category", err)
	}
	return writeHierarchy(c, result)
}

// GetCategory returns one active category with its subtree.
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	result, err := h.hierarchy.Subtree(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return common.SendError(c, "Category", err)
	}
	if len(result.Categories) == 0 {
		return common.SendNotFoundError(c, "Category")
	}
	c.Response().Header().Set(SourceHeader, string(result.Source))
	return c.JSON(http.StatusOK, result.Categories[0])
}

// GetMenu returns the grouped mega-menu layout for a subcategory's leaves.
func (h *CategoryHandlers) GetMenu(c echo.Context) error {
	result, err := h.hierarchy.Menu(c.Request().Context(), c.Param("slug"), c.Param("subSlug"))
	if err != nil {
		return common.SendError(c, "Subcategory", err)
	}
	if result.Groups == nil {
		result.Groups = []menu.Group{}
	}
	c.Response().Header().Set(SourceHeader, string(result.Source))
	return c.JSON(http.StatusOK, result)
}
