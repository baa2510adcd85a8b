package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/service"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAggregator struct {
	field   string
	ops     []model.AggregateOp
	groupBy string
}

func (a *stubAggregator) Aggregate(ctx context.Context, field string, ops []model.AggregateOp, groupBy string) (*model.AggregationResult, error) {
	a.field, a.ops, a.groupBy = field, ops, groupBy
	avg := 71.5
	return &model.AggregationResult{Field: field, Avg: &avg}, nil
}

func newChartRouter(gw *stubGateway, agg *stubAggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewChartController(service.NewChartService(gw), agg)
	r := gin.New()
	r.GET("/api/charts", ctrl.ChartData)
	r.GET("/charts/score-vs-attendance.png", ctrl.ScoreVsAttendance)
	r.GET("/charts/study-sleep.png", ctrl.StudySleep)
	r.GET("/api/aggregate", ctrl.Aggregate)
	return r
}

func TestChartDataJSON(t *testing.T) {
	gw := &stubGateway{records: []model.StudentRecord{
		{HoursStudied: 5.2, SleepHours: 7.9, AttendancePercent: 80, ExamScore: 30},
		{HoursStudied: 5.9, SleepHours: 7.1, AttendancePercent: 90, ExamScore: 40},
	}}
	r := newChartRouter(gw, &stubAggregator{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data model.ChartData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.ScoreVsAttendance, 2)
	assert.Equal(t, []model.StudySleepBucket{{HoursStudied: 5, HoursSleep: 7, AvgScore: 35}}, body.Data.AvgScoreByStudyAndSleep)
}

func TestChartPNGs(t *testing.T) {
	gw := &stubGateway{records: []model.StudentRecord{{HoursStudied: 3, SleepHours: 8, AttendancePercent: 70, ExamScore: 60}}}
	r := newChartRouter(gw, &stubAggregator{})

	for _, path := range []string{"/charts/score-vs-attendance.png", "/charts/study-sleep.png"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		assert.NoError(t, err, path)
	}
}

func TestAggregateProxy(t *testing.T) {
	agg := &stubAggregator{}
	r := newChartRouter(&stubGateway{}, agg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/aggregate?field=exam_score&function=avg&function=max&groupBy=sleep_hours", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "exam_score", agg.field)
	assert.Equal(t, []model.AggregateOp{model.AggAvg, model.AggMax}, agg.ops)
	assert.Equal(t, "sleep_hours", agg.groupBy)
	assert.Contains(t, w.Body.String(), `"avg":71.5`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/aggregate?field=student_id", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/aggregate?field=exam_score&function=median", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
