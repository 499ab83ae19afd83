package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// ActivityMiddleware records admin write requests.
type ActivityMiddleware struct {
	activityService services.ActivityLogService
}

func NewActivityMiddleware(activityService services.ActivityLogService) *ActivityMiddleware {
	return &ActivityMiddleware{activityService: activityService}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// RecordWrites logs every mutating request after it completes. A failure to
// store the entry is logged and never changes the response.
func (m *ActivityMiddleware) RecordWrites() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			req := c.Request()
			if !isWrite(req.Method) {
				return err
			}

			actor, _ := common.GetSubjectFromContext(req.Context())
			entry := &models.ActivityLog{
				Actor:      actor,
				Method:     req.Method,
				Route:      c.Path(),
				Path:       req.URL.Path,
				StatusCode: c.Response().Status,
			}
			if err != nil {
				entry.Error = err.Error()
				if he, ok := err.(*echo.HTTPError); ok {
					entry.StatusCode = he.Code
				}
			}

			// The request context may already be cancelled.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), 2*time.Second)
			defer cancel()
			if logErr := m.activityService.LogActivity(ctx, entry); logErr != nil {
				log.Printf("WARN: failed to record activity %s %s: %v", entry.Method, entry.Path, logErr)
			}

			return err
		}
	}
}
