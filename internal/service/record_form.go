package service

import (
	"errors"
	"exam_dashboard/internal/model"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidNumbers    = "Please enter valid numbers for all fields"
	msgHoursStudiedRange = "Hours studied must be between 0 and 24"
	msgSleepHoursRange   = "Sleep hours must be between 0 and 24"
	msgAttendanceRange   = "Attendance must be between 0 and 100"
)

// RecordForm 新增记录对话框的原始输入
type RecordForm struct {
	HoursStudied      string `form:"hours_studied" json:"hours_studied"`
	SleepHours        string `form:"sleep_hours" json:"sleep_hours"`
	AttendancePercent string `form:"attendance_percent" json:"attendance_percent"`
	PreviousScores    string `form:"previous_scores" json:"previous_scores"`
	ExamScore         string `form:"exam_score" json:"exam_score"`
}

// ValidationError 表单校验失败，Message 直接展示给用户
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// recordRanges 取值范围。previous_scores 与 exam_score 不做范围校验（输入框限制为 0-100，但提交时不强制）
type recordRanges struct {
	HoursStudied      float64 `validate:"gte=0,lte=24"`
	SleepHours        float64 `validate:"gte=0,lte=24"`
	AttendancePercent float64 `validate:"gte=0,lte=100"`
}

// 按校验顺序排列
var rangeMessages = []struct {
	field   string
	message string
}{
	{"HoursStudied", msgHoursStudiedRange},
	{"SleepHours", msgSleepHoursRange},
	{"AttendancePercent", msgAttendanceRange},
}

var formValidator = validator.New()

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseIntPrefix 只取开头的整数部分："78.9" 为 78，"1e2" 为 1，没有数字时无效
func parseIntPrefix(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}

// Validate 先检查五个字段都是数字，再依次检查学习时长、睡眠时长、出勤率的范围
func (f RecordForm) Validate() (model.NewStudentRecord, error) {
	hours, ok1 := parseNumber(f.HoursStudied)
	sleep, ok2 := parseNumber(f.SleepHours)
	attendance, ok3 := parseNumber(f.AttendancePercent)
	previous, ok4 := parseIntPrefix(f.PreviousScores)
	exam, ok5 := parseNumber(f.ExamScore)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return model.NewStudentRecord{}, &ValidationError{Message: msgInvalidNumbers}
	}

	err := formValidator.Struct(recordRanges{
		HoursStudied:      hours,
		SleepHours:        sleep,
		AttendancePercent: attendance,
	})
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return model.NewStudentRecord{}, err
		}
		failed := make(map[string]bool, len(fieldErrs))
		for _, fe := range fieldErrs {
			failed[fe.StructField()] = true
		}
		for _, rm := range rangeMessages {
			if failed[rm.field] {
				return model.NewStudentRecord{}, &ValidationError{Field: rm.field, Message: rm.message}
			}
		}
	}

	return model.NewStudentRecord{
		HoursStudied:      hours,
		SleepHours:        sleep,
		AttendancePercent: attendance,
		PreviousScores:    previous,
		ExamScore:         exam,
	}, nil
}
