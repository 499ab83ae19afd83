package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// JobStatusProvider reports scheduled background jobs. Satisfied by
// *background.JobScheduler.
type JobStatusProvider interface {
	GetJobStatus() map[string]interface{}
}

type JobHandlers struct {
	scheduler    JobStatusProvider
	hierarchySvc services.HierarchyService
}

func NewJobHandlers(scheduler JobStatusProvider, hierarchySvc services.HierarchyService) *JobHandlers {
	return &JobHandlers{scheduler: scheduler, hierarchySvc: hierarchySvc}
}

// GetJobStatus lists background jobs and their next run.
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	if h.scheduler == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"total_jobs": 0, "jobs": map[string]string{}})
	}
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}

// RefreshHierarchy rebuilds the cached tree now instead of waiting for the
// next scheduled run.
func (h *JobHandlers) RefreshHierarchy(c echo.Context) error {
	if err := h.hierarchySvc.Refresh(c.Request().Context()); err != nil {
		return common.SendError(c, "Hierarchy", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "refreshed"})
}
