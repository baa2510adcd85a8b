package model

// StudentRecord 一条学生学习/出勤/考试记录
// swagger:model
type StudentRecord struct {
	ID                int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID         string  `gorm:"type:varchar(16);index" json:"student_id"`
	HoursStudied      float64 `json:"hours_studied"`
	SleepHours        float64 `json:"sleep_hours"`
	AttendancePercent float64 `json:"attendance_percent"`
	PreviousScores    int     `json:"previous_scores"`
	ExamScore         float64 `json:"exam_score"`
}

func (StudentRecord) TableName() string {
	return "student_records"
}

// NewStudentRecord 创建记录时提交的字段，student_id 由客户端生成
type NewStudentRecord struct {
	HoursStudied      float64 `json:"hours_studied" binding:"gte=0,lte=24"`
	SleepHours        float64 `json:"sleep_hours" binding:"gte=0,lte=24"`
	AttendancePercent float64 `json:"attendance_percent" binding:"gte=0,lte=100"`
	PreviousScores    int     `json:"previous_scores"`
	ExamScore         float64 `json:"exam_score"`
}

// RecordPatch 部分更新，nil 字段保持原值
type RecordPatch struct {
	StudentID         *string  `json:"student_id,omitempty"`
	HoursStudied      *float64 `json:"hours_studied,omitempty"`
	SleepHours        *float64 `json:"sleep_hours,omitempty"`
	AttendancePercent *float64 `json:"attendance_percent,omitempty"`
	PreviousScores    *int     `json:"previous_scores,omitempty"`
	ExamScore         *float64 `json:"exam_score,omitempty"`
}

// Apply 返回合并后的副本
func (p RecordPatch) Apply(r StudentRecord) StudentRecord {
	if p.StudentID != nil {
		r.StudentID = *p.StudentID
	}
	if p.HoursStudied != nil {
		r.HoursStudied = *p.HoursStudied
	}
	if p.SleepHours != nil {
		r.SleepHours = *p.SleepHours
	}
	if p.AttendancePercent != nil {
		r.AttendancePercent = *p.AttendancePercent
	}
	if p.PreviousScores != nil {
		r.PreviousScores = *p.PreviousScores
	}
	if p.ExamScore != nil {
		r.ExamScore = *p.ExamScore
	}
	return r
}

// SortableFields 允许排序的列
var SortableFields = []string{
	"student_id",
	"hours_studied",
	"sleep_hours",
	"attendance_percent",
	"previous_scores",
	"exam_score",
}

func IsSortableField(field string) bool {
	for _, f := range SortableFields {
		if f == field {
			return true
		}
	}
	return false
}

// NumericFields 可聚合的数值列
var NumericFields = []string{
	"hours_studied",
	"sleep_hours",
	"attendance_percent",
	"previous_scores",
	"exam_score",
}

func IsNumericField(field string) bool {
	for _, f := range NumericFields {
		if f == field {
			return true
		}
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
