package controller

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"exam_dashboard/internal/config"
	"exam_dashboard/internal/gateway"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/repository"
	"exam_dashboard/internal/service"
	"exam_dashboard/internal/util"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordStore struct {
	records map[int64]model.StudentRecord
	nextID  int64
	query   repository.RecordQuery
}

func newRecordStore(records ...model.StudentRecord) *recordStore {
	s := &recordStore{records: map[int64]model.StudentRecord{}, nextID: 100}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

// sorted 按 id 排序，排序列校验与仓库一致
func (s *recordStore) sorted(sort string) ([]model.StudentRecord, error) {
	if sort != "" && !model.IsSortableField(strings.TrimPrefix(sort, "-")) {
		return nil, util.ErrInvalidSortField
	}
	out := make([]model.StudentRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b model.StudentRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// List 与仓库一样按 Offset/Limit 取页
func (s *recordStore) List(q repository.RecordQuery) ([]model.StudentRecord, int64, error) {
	s.query = q
	all, err := s.sorted(q.Sort)
	if err != nil {
		return nil, 0, err
	}
	start := min((q.Page-1)*q.Limit, len(all))
	end := min(start+q.Limit, len(all))
	return all[start:end], int64(len(all)), nil
}

func (s *recordStore) Search(q repository.RecordQuery) ([]model.StudentRecord, int64, error) {
	s.query = q
	var out []model.StudentRecord
	for _, r := range s.records {
		if strings.Contains(r.StudentID, q.Q) {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (s *recordStore) All(sort string) ([]model.StudentRecord, error) {
	return s.sorted(sort)
}

func (s *recordStore) FindByID(id int64) (*model.StudentRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, util.ErrRecordNotFound
	}
	return &r, nil
}

func (s *recordStore) Create(record *model.StudentRecord) error {
	record.ID = s.nextID
	s.nextID++
	s.records[record.ID] = *record
	return nil
}

func (s *recordStore) CreateBatch(records []model.StudentRecord) error {
	for i := range records {
		s.Create(&records[i])
	}
	return nil
}

func (s *recordStore) Update(record *model.StudentRecord) error {
	s.records[record.ID] = *record
	return nil
}

func (s *recordStore) Delete(id int64) error {
	if _, ok := s.records[id]; !ok {
		return util.ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *recordStore) Aggregate(field string, ops []model.AggregateOp, groupBy string) (*model.AggregationResult, []model.GroupAggregate, error) {
	if !model.IsNumericField(field) {
		return nil, nil, util.ErrInvalidField
	}
	count := float64(len(s.records))
	res := model.AggregationResult{Field: field, Count: &count}
	if groupBy != "" {
		return nil, []model.GroupAggregate{{Group: 7, AggregationResult: res}}, nil
	}
	return &res, nil, nil
}

func newRecordRouter(store *recordStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewRecordController(service.NewRecordService(store))
	r := gin.New()
	r.GET("/records", ctrl.ListRecords)
	r.POST("/records", ctrl.CreateRecord)
	r.GET("/records/:id", ctrl.GetRecord)
	r.PUT("/records/:id", ctrl.UpdateRecord)
	r.DELETE("/records/:id", ctrl.DeleteRecord)
	r.GET("/search", ctrl.Search)
	r.GET("/aggregate", ctrl.Aggregate)
	r.POST("/import", ctrl.Import)
	return r
}

func serve(r *gin.Engine, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordListEnvelope(t *testing.T) {
	store := newRecordStore(model.StudentRecord{ID: 1, StudentID: "S001"})
	r := newRecordRouter(store)

	w := serve(r, http.MethodGet, "/records?page=1&limit=5&sort=-exam_score", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "-exam_score", store.query.Sort)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Items      []model.StudentRecord `json:"items"`
			Pagination util.Pagination       `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data.Items, 1)
	assert.Equal(t, util.Pagination{Total: 1, Page: 1, Limit: 5, TotalPages: 1}, body.Data.Pagination)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/records?sort=password", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/records?limit=1000", nil, "").Code)
}

func TestRecordListWithoutPagingReturnsEverything(t *testing.T) {
	store := newRecordStore()
	for i := 1; i <= 25; i++ {
		store.records[int64(i)] = model.StudentRecord{ID: int64(i), StudentID: fmt.Sprintf("S%03d", i), ExamScore: float64(40 + i)}
	}
	r := newRecordRouter(store)

	w := serve(r, http.MethodGet, "/records", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Items      []model.StudentRecord `json:"items"`
			Pagination util.Pagination       `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Items, 25)
	assert.Equal(t, int64(25), body.Data.Pagination.Total)
	assert.Equal(t, 1, body.Data.Pagination.TotalPages)

	// 显式分页仍然按页返回
	w = serve(r, http.MethodGet, "/records?page=3&limit=10", nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.Items, 5)
	assert.Equal(t, 3, body.Data.Pagination.TotalPages)

	// 看板客户端的全量拉取与图表聚合覆盖所有记录
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := gateway.NewClient(config.GatewayConfig{BaseURL: srv.URL})
	records, err := client.GetAllRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 25)

	data := service.BuildChartData(records)
	assert.Len(t, data.ScoreVsAttendance, 25)
}

func TestRecordCRUD(t *testing.T) {
	store := newRecordStore()
	r := newRecordRouter(store)

	w := serve(r, http.MethodPost, "/records", []byte(`{"student_id":"SA1B","hours_studied":5,"sleep_hours":7,"attendance_percent":90,"previous_scores":70,"exam_score":81}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "SA1B", store.records[100].StudentID)

	w = serve(r, http.MethodPost, "/records", []byte(`{"student_id":"SA1C","hours_studied":30}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPut, "/records/100", []byte(`{"exam_score":90}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90.0, store.records[100].ExamScore)
	assert.Equal(t, 5.0, store.records[100].HoursStudied)

	w = serve(r, http.MethodGet, "/records/100", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"student_id":"SA1B"`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/records/100", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/records/100", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/records/100", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/records/abc", nil, "").Code)
}

func TestRecordAggregate(t *testing.T) {
	r := newRecordRouter(newRecordStore(model.StudentRecord{ID: 1}))

	w := serve(r, http.MethodGet, "/aggregate?field=exam_score&function=count", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = serve(r, http.MethodGet, "/aggregate?field=exam_score&groupBy=sleep_hours", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"groups"`)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/aggregate?field=exam_score&function=median", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/aggregate?field=student_id", nil, "").Code)
}

func TestRecordImport(t *testing.T) {
	store := newRecordStore()
	r := newRecordRouter(store)

	content, err := service.WriteRecordsXLSX([]model.StudentRecord{
		{StudentID: "S777", HoursStudied: 2, SleepHours: 8, AttendancePercent: 95, PreviousScores: 80, ExamScore: 85},
	})
	require.NoError(t, err)

	upload := func(name string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		part.Write(data)
		require.NoError(t, mw.Close())
		return serve(r, http.MethodPost, "/import", buf.Bytes(), mw.FormDataContentType())
	}

	w := upload("records.xlsx", content)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"imported":1`)
	assert.Equal(t, "S777", store.records[100].StudentID)

	assert.Equal(t, http.StatusBadRequest, upload("records.csv", []byte("a,b")).Code)
	assert.Equal(t, http.StatusBadRequest, upload("records.xlsx", []byte("not a spreadsheet")).Code)
}
