package service

import (
	"context"
	"exam_dashboard/internal/gateway"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/repository"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"io"

	"go.uber.org/zap"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// RecordStore 网关侧的记录持久化
type RecordStore interface {
	List(q repository.RecordQuery) ([]model.StudentRecord, int64, error)
	Search(q repository.RecordQuery) ([]model.StudentRecord, int64, error)
	All(sort string) ([]model.StudentRecord, error)
	FindByID(id int64) (*model.StudentRecord, error)
	Create(record *model.StudentRecord) error
	CreateBatch(records []model.StudentRecord) error
	Update(record *model.StudentRecord) error
	Delete(id int64) error
	Aggregate(field string, ops []model.AggregateOp, groupBy string) (*model.AggregationResult, []model.GroupAggregate, error)
}

// CreateRecordRequest POST /records 的请求体
type CreateRecordRequest struct {
	StudentID string `json:"student_id" binding:"required,max=16"`
	model.NewStudentRecord
}

// RecordPage 网关列表结果
type RecordPage struct {
	Items      []model.StudentRecord
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type RecordService struct {
	Store RecordStore
	// NewDisplayID 导入缺少 student_id 时使用
	NewDisplayID func() string
}

func NewRecordService(store RecordStore) *RecordService {
	return &RecordService{Store: store, NewDisplayID: gateway.GenerateDisplayID}
}

func normalizeQuery(q repository.RecordQuery) repository.RecordQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q
}

func toPage(items []model.StudentRecord, total int64, q repository.RecordQuery) *RecordPage {
	if items == nil {
		items = []model.StudentRecord{}
	}
	return &RecordPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: gateway.TotalPages(int(total), q.Limit),
	}
}

func (s *RecordService) List(ctx context.Context, q repository.RecordQuery) (*RecordPage, error) {
	q = normalizeQuery(q)
	items, total, err := s.Store.List(q)
	if err != nil {
		return nil, err
	}
	return toPage(items, total, q), nil
}

// All 不分页返回全部记录，total_pages 固定为 1
func (s *RecordService) All(ctx context.Context, sort string) (*RecordPage, error) {
	items, err := s.Store.All(sort)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.StudentRecord{}
	}
	return &RecordPage{
		Items:      items,
		Total:      int64(len(items)),
		Page:       1,
		Limit:      len(items),
		TotalPages: 1,
	}, nil
}

func (s *RecordService) Search(ctx context.Context, q repository.RecordQuery) (*RecordPage, error) {
	q = normalizeQuery(q)
	items, total, err := s.Store.Search(q)
	if err != nil {
		return nil, err
	}
	return toPage(items, total, q), nil
}

func (s *RecordService) Get(ctx context.Context, id int64) (*model.StudentRecord, error) {
	return s.Store.FindByID(id)
}

func (s *RecordService) Create(ctx context.Context, req CreateRecordRequest) (*model.StudentRecord, error) {
	record := &model.StudentRecord{
		StudentID:         req.StudentID,
		HoursStudied:      req.HoursStudied,
		SleepHours:        req.SleepHours,
		AttendancePercent: req.AttendancePercent,
		PreviousScores:    req.PreviousScores,
		ExamScore:         req.ExamScore,
	}
	if err := s.Store.Create(record); err != nil {
		return nil, err
	}
	logger.Log.Info("Record created", zap.Int64("id", record.ID), zap.String("student_id", record.StudentID))
	return record, nil
}

// Update 合并部分字段，id 不可修改
func (s *RecordService) Update(ctx context.Context, id int64, patch model.RecordPatch) (*model.StudentRecord, error) {
	existing, err := s.Store.FindByID(id)
	if err != nil {
		return nil, err
	}
	merged := patch.Apply(*existing)
	merged.ID = id
	if err := s.Store.Update(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *RecordService) Delete(ctx context.Context, id int64) error {
	return s.Store.Delete(id)
}

func (s *RecordService) Aggregate(ctx context.Context, field string, functions []string, groupBy string) (*model.AggregationResult, []model.GroupAggregate, error) {
	ops := make([]model.AggregateOp, 0, len(functions))
	for _, fn := range functions {
		if !model.IsAggregateOp(fn) {
			return nil, nil, util.ErrInvalidAggregate
		}
		ops = append(ops, model.AggregateOp(fn))
	}
	return s.Store.Aggregate(field, ops, groupBy)
}

// Import 从 xlsx 导入记录，任一行无效则整体放弃
func (s *RecordService) Import(ctx context.Context, r io.Reader) (int, error) {
	rows, err := ReadRecordsXLSX(r)
	if err != nil {
		return 0, err
	}

	records := make([]model.StudentRecord, 0, len(rows))
	for _, row := range rows {
		id := row.StudentID
		if id == "" {
			id = s.NewDisplayID()
		}
		records = append(records, model.StudentRecord{
			StudentID:         id,
			HoursStudied:      row.Fields.HoursStudied,
			SleepHours:        row.Fields.SleepHours,
			AttendancePercent: row.Fields.AttendancePercent,
			PreviousScores:    row.Fields.PreviousScores,
			ExamScore:         row.Fields.ExamScore,
		})
	}

	if err := s.Store.CreateBatch(records); err != nil {
		return 0, err
	}
	logger.Log.Info("Records imported", zap.Int("count", len(records)))
	return len(records), nil
}
