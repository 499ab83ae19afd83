package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

type ImageHandlers struct {
	imageSvc services.ImageService
}

func NewImageHandlers(imageSvc services.ImageService) *ImageHandlers {
	return &ImageHandlers{imageSvc: imageSvc}
}

// GetImage redirects to a presigned object store URL for the key in the path.
func (h *ImageHandlers) GetImage(c echo.Context) error {
	url, err := h.imageSvc.PresignedURL(c.Request().Context(), c.Param("*"))
	if err != nil {
		return common.SendError(c, "Image", err)
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=60")
	return c.Redirect(http.StatusFound, url)
}
