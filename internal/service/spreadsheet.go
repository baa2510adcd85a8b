package service

import (
	"bytes"
	"errors"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const recordsSheet = "Records"

// recordColumns 表头即记录的 JSON 字段名
var recordColumns = []string{
	"id",
	"student_id",
	"hours_studied",
	"sleep_hours",
	"attendance_percent",
	"previous_scores",
	"exam_score",
}

// WriteRecordsXLSX 生成单表 xlsx，第一行为表头
func WriteRecordsXLSX(records []model.StudentRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Log.Warn("Error closing workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), recordsSheet); err != nil {
		return nil, err
	}

	for i, col := range recordColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(recordsSheet, cell, col); err != nil {
			return nil, err
		}
	}

	for i, r := range records {
		row := []interface{}{r.ID, r.StudentID, r.HoursStudied, r.SleepHours, r.AttendancePercent, r.PreviousScores, r.ExamScore}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(recordsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportedRow 导入的一行，StudentID 为空时由调用方生成
type ImportedRow struct {
	StudentID string
	Fields    model.NewStudentRecord
}

// ReadRecordsXLSX 读取第一个工作表，按表头定位列；id 列忽略
func ReadRecordsXLSX(r io.Reader) ([]ImportedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Log.Warn("Error closing workbook", zap.Error(err))
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, util.ErrEmptySpreadsheet
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range model.NumericFields {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", util.ErrMissingColumns, col)
		}
	}

	out := make([]ImportedRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		cell := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		form := RecordForm{
			HoursStudied:      cell("hours_studied"),
			SleepHours:        cell("sleep_hours"),
			AttendancePercent: cell("attendance_percent"),
			PreviousScores:    cell("previous_scores"),
			ExamScore:         cell("exam_score"),
		}
		fields, err := form.Validate()
		if err != nil {
			// 行号从 1 开始，含表头
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, ImportedRow{StudentID: cell("student_id"), Fields: fields})
	}
	return out, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func exportFilename(n int64) string {
	return "student-records-" + strconv.FormatInt(n, 10) + ".xlsx"
}
