package handlers

import (
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Router groups everything RegisterRoutes mounts. Nil handler sets are skipped.
type Router struct {
	Categories *CategoryHandlers
	Products   *ProductHandlers
	Content    *ContentHandlers
	Images     *ImageHandlers
	Health     *HealthHandlers
	Admin      *AdminHandlers
	Jobs       *JobHandlers
	AdminAuth  *middleware.AdminAuth
	Activity   *middleware.ActivityMiddleware
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	if r.Health != nil {
		api.GET("/health", r.Health.HealthCheck)
	}

	api.GET("/categories", r.Categories.ListCategories)
	api.GET("/categories/hierarchy", r.Categories.GetHierarchy)
	api.GET("/categories/:slug", r.Categories.GetCategory)
	api.GET("/categories/:slug/subcategories/:subSlug/menu", r.Categories.GetMenu)

	api.GET("/products", r.Products.ListProducts)
	api.GET("/products/category/:slug", r.Products.ListByCategory)
	api.GET("/products/slug/:slug", r.Products.GetBySlug)

	api.GET("/content/:pageKey", r.Content.GetContent)

	if r.Images != nil {
		api.GET("/images/*", r.Images.GetImage)
	}

	if r.Admin == nil || r.AdminAuth == nil {
		return
	}

	admin := api.Group("/admin")
	admin.Use(r.AdminAuth.Authenticate())
	admin.Use(r.AdminAuth.RequireAdmin())
	if r.Activity != nil {
		admin.Use(r.Activity.RecordWrites())
	}

	admin.GET("/categories", r.Admin.ListCategories)
	admin.POST("/categories", r.Admin.CreateCategory)
	admin.PUT("/categories/:id", r.Admin.UpdateCategory)
	admin.DELETE("/categories/:id", r.Admin.DeleteCategory)
	admin.GET("/categories/:id/subcategories", r.Admin.ListSubcategories)

	admin.POST("/subcategories", r.Admin.CreateSubcategory)
	admin.PUT("/subcategories/:id", r.Admin.UpdateSubcategory)
	admin.DELETE("/subcategories/:id", r.Admin.DeleteSubcategory)
	admin.GET("/subcategories/:id/sub-subcategories", r.Admin.ListSubSubcategories)

	admin.POST("/sub-subcategories", r.Admin.CreateSubSubcategory)
	admin.PUT("/sub-subcategories/:id", r.Admin.UpdateSubSubcategory)
	admin.DELETE("/sub-subcategories/:id", r.Admin.DeleteSubSubcategory)

	admin.GET("/products", r.Admin.ListProducts)
	admin.POST("/products", r.Admin.CreateProduct)
	admin.PUT("/products/:id", r.Admin.UpdateProduct)
	admin.DELETE("/products/:id", r.Admin.DeleteProduct)

	admin.PUT("/content/:pageKey", r.Content.UpsertContent)
	admin.GET("/activity", r.Admin.ListActivity)

	if r.Jobs != nil {
		admin.GET("/jobs", r.Jobs.GetJobStatus)
		admin.POST("/jobs/hierarchy-refresh", r.Jobs.RefreshHierarchy)
	}
}
