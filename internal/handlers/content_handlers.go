package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

type ContentHandlers struct {
	contentSvc services.ContentService
}

func NewContentHandlers(contentSvc services.ContentService) *ContentHandlers {
	return &ContentHandlers{contentSvc: contentSvc}
}

// GetContent never 404s; unknown keys get an empty placeholder.
func (h *ContentHandlers) GetContent(c echo.Context) error {
	content, err := h.contentSvc.Get(c.Request().Context(), c.Param("pageKey"))
	if err != nil {
		return common.SendError(c, "Content", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"content": content})
}

type UpsertContentRequest struct {
	Title    string           `json:"title" validate:"max=300"`
	Subtitle string           `json:"subtitle" validate:"max=1000"`
	Items    []map[string]any `json:"items"`
}

func (h *ContentHandlers) UpsertContent(c echo.Context) error {
	var req UpsertContentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendError(c, "Content", err)
	}

	content := &models.PageContent{
		PageKey:  c.Param("pageKey"),
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Items:    req.Items,
	}
	if err := h.contentSvc.Upsert(c.Request().Context(), content); err != nil {
		return common.SendError(c, "Content", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"content": content})
}
