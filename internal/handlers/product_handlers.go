package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// DegradedHeader is set when a listing was replaced by an empty result
// because the store could not be reached.
const DegradedHeader = "X-Catalog-Degraded"

// ProductHandlers serves public product reads.
type ProductHandlers struct {
	productSvc services.ProductService
}

func NewProductHandlers(productSvc services.ProductService) *ProductHandlers {
	return &ProductHandlers{productSvc: productSvc}
}

// ListProductsRequest represents query parameters for product listings
type ListProductsRequest struct {
	Category         string `query:"category"`
	Subcategory      string `query:"subcategory"`
	IsNew            bool   `query:"isNew"`
	IsFeatured       bool   `query:"isFeatured"`
	IsLimitedEdition bool   `query:"isLimitedEdition"`
	Sale             bool   `query:"sale"`
	Search           string `query:"search"`
	Sort             string `query:"sort"`
	Page             int    `query:"page"`
	Limit            int    `query:"limit"`
}

func (r *ListProductsRequest) filter() models.ProductFilter {
	return models.ProductFilter{
		Category:         r.Category,
		Subcategory:      r.Subcategory,
		IsNew:            r.IsNew,
		IsFeatured:       r.IsFeatured,
		IsLimitedEdition: r.IsLimitedEdition,
		OnSale:           r.Sale,
		Search:           r.Search,
		Sort:             r.Sort,
		Page:             r.Page,
		Limit:            r.Limit,
	}
}

func (h *ProductHandlers) writeListing(c echo.Context, filter models.ProductFilter) error {
	listing := h.productSvc.Query(c.Request().Context(), filter)
	if listing.Degraded {
		c.Response().Header().Set(DegradedHeader, "true")
	}
	return c.JSON(http.StatusOK, listing)
}

// ListProducts handles filtered, sorted, paginated product listings.
// A store failure yields an empty page rather than an error.
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	var req ListProductsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	return h.writeListing(c, req.filter())
}

// ListByCategory is ListProducts scoped to the category in the path.
func (h *ProductHandlers) ListByCategory(c echo.Context) error {
	var req ListProductsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	filter := req.filter()
	filter.Category = c.Param("slug")
	return h.writeListing(c, filter)
}

// GetBySlug returns one active product. Inactive and unknown slugs both 404.
func (h *ProductHandlers) GetBySlug(c echo.Context) error {
	product, err := h.productSvc.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return common.SendError(c, "Product", err)
	}
	return c.JSON(http.StatusOK, product)
}
