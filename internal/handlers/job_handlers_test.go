package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticJobs map[string]interface{}

func (s staticJobs) GetJobStatus() map[string]interface{} { return s }

type refreshStub struct {
	services.HierarchyService
	err   error
	calls int
}

func (r *refreshStub) Refresh(context.Context) error {
	r.calls++
	return r.err
}

func TestJobHandlers_GetJobStatus(t *testing.T) {
	e := echo.New()

	t.Run("no scheduler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/jobs", nil), rec)

		require.NoError(t, NewJobHandlers(nil, &refreshStub{}).GetJobStatus(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"total_jobs":0,"jobs":{}}`, rec.Body.String())
	})

	t.Run("scheduler status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/admin/jobs", nil), rec)
		jobs := staticJobs{"total_jobs": 1, "jobs": map[string]string{"hierarchy-refresh": "2026-01-01T00:00:00Z"}}

		require.NoError(t, NewJobHandlers(jobs, &refreshStub{}).GetJobStatus(c))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.EqualValues(t, 1, body["total_jobs"])
		assert.Contains(t, body["jobs"], "hierarchy-refresh")
	})
}

func TestJobHandlers_RefreshHierarchy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"refreshed", nil, http.StatusOK},
		{"store down", common.Unavailable("list categories", errDown), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/admin/jobs/hierarchy-refresh", nil), rec)
			stub := &refreshStub{err: tt.err}

			require.NoError(t, NewJobHandlers(nil, stub).RefreshHierarchy(c))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, 1, stub.calls)
		})
	}
}
