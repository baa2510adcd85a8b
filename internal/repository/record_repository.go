package repository

import (
	"errors"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/util"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// RecordQuery 列表与检索的分页参数，Sort 形如 "exam_score" 或 "-exam_score"
type RecordQuery struct {
	Page  int
	Limit int
	Sort  string
	Q     string
}

type RecordRepository struct {
	DB *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{DB: db}
}

// parseSort 只接受白名单中的列，防止拼接任意 SQL
func parseSort(sort string) (string, error) {
	if sort == "" {
		return "id asc", nil
	}
	order := "asc"
	field := sort
	if strings.HasPrefix(sort, "-") {
		order = "desc"
		field = sort[1:]
	}
	if !model.IsSortableField(field) {
		return "", util.ErrInvalidSortField
	}
	return field + " " + order + ", id asc", nil
}

func (r *RecordRepository) page(db *gorm.DB, q RecordQuery) ([]model.StudentRecord, int64, error) {
	orderBy, err := parseSort(q.Sort)
	if err != nil {
		return nil, 0, err
	}

	// 同一查询条件先计数再取页
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Model(&model.StudentRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.StudentRecord
	err = db.Order(orderBy).
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&records).Error
	return records, total, err
}

func (r *RecordRepository) List(q RecordQuery) ([]model.StudentRecord, int64, error) {
	return r.page(r.DB.Model(&model.StudentRecord{}), q)
}

// Search student_id 模糊匹配；检索词是数字时同时精确匹配各数值列
func (r *RecordRepository) Search(q RecordQuery) ([]model.StudentRecord, int64, error) {
	term := strings.TrimSpace(q.Q)
	db := r.DB.Model(&model.StudentRecord{})

	cond := r.DB.Where("student_id LIKE ?", "%"+term+"%")
	if n, err := strconv.ParseFloat(term, 64); err == nil {
		for _, col := range model.NumericFields {
			cond = cond.Or(col+" = ?", n)
		}
	}
	return r.page(db.Where(cond), q)
}

// All 全量记录，供图表和导出使用
func (r *RecordRepository) All(sort string) ([]model.StudentRecord, error) {
	orderBy, err := parseSort(sort)
	if err != nil {
		return nil, err
	}
	var records []model.StudentRecord
	err = r.DB.Order(orderBy).Find(&records).Error
	return records, err
}

func (r *RecordRepository) FindByID(id int64) (*model.StudentRecord, error) {
	var record model.StudentRecord
	err := r.DB.First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) Create(record *model.StudentRecord) error {
	return r.DB.Create(record).Error
}

// CreateBatch 导入时在同一事务中写入
func (r *RecordRepository) CreateBatch(records []model.StudentRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 100).Error
	})
}

func (r *RecordRepository) Update(record *model.StudentRecord) error {
	return r.DB.Save(record).Error
}

func (r *RecordRepository) Delete(id int64) error {
	res := r.DB.Delete(&model.StudentRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrRecordNotFound
	}
	return nil
}

type aggregateRow struct {
	Grp   float64
	Avg   float64
	Min   float64
	Max   float64
	Sum   float64
	Count float64
}

// Aggregate 对数值列做统计；groupBy 非空时按该列分组
func (r *RecordRepository) Aggregate(field string, ops []model.AggregateOp, groupBy string) (*model.AggregationResult, []model.GroupAggregate, error) {
	if !model.IsNumericField(field) {
		return nil, nil, fmt.Errorf("%w: %s", util.ErrInvalidField, field)
	}
	if groupBy != "" && !model.IsNumericField(groupBy) {
		return nil, nil, fmt.Errorf("%w: %s", util.ErrInvalidField, groupBy)
	}
	if len(ops) == 0 {
		ops = model.DefaultAggregateOps
	}

	selects := []string{
		"AVG(" + field + ") AS avg",
		"MIN(" + field + ") AS min",
		"MAX(" + field + ") AS max",
		"SUM(" + field + ") AS sum",
		"COUNT(" + field + ") AS count",
	}

	if groupBy == "" {
		var row aggregateRow
		err := r.DB.Model(&model.StudentRecord{}).Select(strings.Join(selects, ", ")).Scan(&row).Error
		if err != nil {
			return nil, nil, err
		}
		res := pickOps(field, row, ops)
		return &res, nil, nil
	}

	var rows []aggregateRow
	err := r.DB.Model(&model.StudentRecord{}).
		Select(groupBy + " AS grp, " + strings.Join(selects, ", ")).
		Group(groupBy).
		Order(groupBy + " asc").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	groups := make([]model.GroupAggregate, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, model.GroupAggregate{Group: row.Grp, AggregationResult: pickOps(field, row, ops)})
	}
	return nil, groups, nil
}

// pickOps 只保留请求的统计项
func pickOps(field string, row aggregateRow, ops []model.AggregateOp) model.AggregationResult {
	res := model.AggregationResult{Field: field}
	for _, op := range ops {
		switch op {
		case model.AggAvg:
			v := row.Avg
			res.Avg = &v
		case model.AggMin:
			v := row.Min
			res.Min = &v
		case model.AggMax:
			v := row.Max
			res.Max = &v
		case model.AggSum:
			v := row.Sum
			res.Sum = &v
		case model.AggCount:
			v := row.Count
			res.Count = &v
		}
	}
	return res
}
