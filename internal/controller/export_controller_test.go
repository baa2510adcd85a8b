package controller

import (
	"exam_dashboard/internal/config"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/service"
	"exam_dashboard/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gw := &stubGateway{records: []model.StudentRecord{{ID: 1, StudentID: "S001"}}}
	storage := &service.StorageService{Provider: &service.LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}}

	r := gin.New()
	r.GET("/export.xlsx", NewExportController(service.NewExportService(gw, storage, 0)).Download)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.MimeXLSX, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("X-Export-URL"), "/exports/student-records-"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, w.Body.Bytes())
	assert.Equal(t, []string{"all"}, gw.ops)
}

func TestExportLatest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	storage := &service.StorageService{Provider: &service.LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}}
	ctrl := NewExportController(service.NewExportService(&stubGateway{}, storage, 3))

	r := gin.New()
	r.GET("/export.xlsx", ctrl.Download)
	r.GET("/export/latest", ctrl.Latest)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	archived := w.Header().Get("X-Export-URL")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/latest", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, archived, w.Header().Get("Location"))
}
