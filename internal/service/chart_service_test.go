package service

import (
	"bytes"
	"context"
	"errors"
	"exam_dashboard/internal/model"
	"image/png"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type staticSource struct {
	records []model.StudentRecord
	err     error
	calls   int
}

func (s *staticSource) GetAllRecords(ctx context.Context) ([]model.StudentRecord, error) {
	s.calls++
	return s.records, s.err
}

func TestBuildChartDataSingleBucket(t *testing.T) {
	records := []model.StudentRecord{
		{HoursStudied: 5.2, SleepHours: 7.9, ExamScore: 30, AttendancePercent: 80},
		{HoursStudied: 5.9, SleepHours: 7.1, ExamScore: 40, AttendancePercent: 90},
	}

	data := BuildChartData(records)

	require.Len(t, data.AvgScoreByStudyAndSleep, 1)
	b := data.AvgScoreByStudyAndSleep[0]
	assert.Equal(t, 5, b.HoursStudied)
	assert.Equal(t, 7, b.HoursSleep)
	assert.InDelta(t, 35.0, b.AvgScore, 1e-9)

	assert.Equal(t, []model.AttendancePoint{
		{Attendance: 80, Score: 30},
		{Attendance: 90, Score: 40},
	}, data.ScoreVsAttendance)
}

func TestBuildChartDataEmpty(t *testing.T) {
	data := BuildChartData(nil)
	assert.NotNil(t, data.ScoreVsAttendance)
	assert.NotNil(t, data.AvgScoreByStudyAndSleep)
	assert.Empty(t, data.ScoreVsAttendance)
	assert.Empty(t, data.AvgScoreByStudyAndSleep)
}

func TestBuildChartDataFirstOccurrenceOrder(t *testing.T) {
	records := []model.StudentRecord{
		{HoursStudied: 9.5, SleepHours: 4.2, ExamScore: 90},
		{HoursStudied: 1.1, SleepHours: 8.8, ExamScore: 50},
		{HoursStudied: 9.0, SleepHours: 4.9, ExamScore: 70},
		{HoursStudied: 3.0, SleepHours: 3.0, ExamScore: 60},
		{HoursStudied: 1.7, SleepHours: 8.0, ExamScore: 52},
	}

	data := BuildChartData(records)

	keys := make([][2]int, 0)
	for _, b := range data.AvgScoreByStudyAndSleep {
		keys = append(keys, [2]int{b.HoursStudied, b.HoursSleep})
	}
	assert.Equal(t, [][2]int{{9, 4}, {1, 8}, {3, 3}}, keys)
	assert.InDelta(t, 80.0, data.AvgScoreByStudyAndSleep[0].AvgScore, 1e-9)
	assert.InDelta(t, 51.0, data.AvgScoreByStudyAndSleep[1].AvgScore, 1e-9)

	// 散点保持顺序且不去重
	assert.Len(t, data.ScoreVsAttendance, len(records))
}

func randomRecords(r *rand.Rand, n int) []model.StudentRecord {
	records := make([]model.StudentRecord, n)
	for i := range records {
		records[i] = model.StudentRecord{
			ID:                int64(i + 1),
			HoursStudied:      r.Float64() * 24,
			SleepHours:        r.Float64() * 24,
			AttendancePercent: r.Float64() * 100,
			ExamScore:         r.Float64() * 100,
		}
	}
	return records
}

func TestBuildChartDataProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		records := randomRecords(r, r.Intn(200))

		first := BuildChartData(records)
		second := BuildChartData(records)
		assert.Equal(t, first, second, "deterministic")

		// 每桶的平均值与直接求和/计数一致，计数之和等于记录数
		type acc struct {
			sum   float64
			count int
		}
		expected := map[[2]int]*acc{}
		for _, rec := range records {
			k := [2]int{int(math.Floor(rec.HoursStudied)), int(math.Floor(rec.SleepHours))}
			if expected[k] == nil {
				expected[k] = &acc{}
			}
			expected[k].sum += rec.ExamScore
			expected[k].count++
		}

		total := 0
		for _, b := range first.AvgScoreByStudyAndSleep {
			e := expected[[2]int{b.HoursStudied, b.HoursSleep}]
			require.NotNil(t, e)
			assert.InDelta(t, e.sum/float64(e.count), b.AvgScore, 1e-9)
			total += e.count
		}
		assert.Equal(t, len(records), total)
		assert.Len(t, first.AvgScoreByStudyAndSleep, len(expected))
	}
}

func TestChartServiceChartData(t *testing.T) {
	src := &staticSource{records: []model.StudentRecord{{HoursStudied: 1, SleepHours: 2, ExamScore: 10}}}
	svc := NewChartService(src)

	data, err := svc.ChartData(context.Background())
	require.NoError(t, err)
	assert.Len(t, data.AvgScoreByStudyAndSleep, 1)
	assert.Equal(t, 1, src.calls)

	src.err = errors.New("offline")
	_, err = svc.ChartData(context.Background())
	assert.Error(t, err)
}

func TestRenderCharts(t *testing.T) {
	data := BuildChartData([]model.StudentRecord{
		{HoursStudied: 5.2, SleepHours: 7.9, ExamScore: 30, AttendancePercent: 80},
		{HoursStudied: 8.1, SleepHours: 6.3, ExamScore: 75, AttendancePercent: 95},
		{HoursStudied: 2.0, SleepHours: 9.0, ExamScore: 55, AttendancePercent: 60},
	})

	for name, render := range map[string]func() ([]byte, error){
		"attendance":  func() ([]byte, error) { return RenderScoreVsAttendance(data.ScoreVsAttendance) },
		"study-sleep": func() ([]byte, error) { return RenderStudySleep(data.AvgScoreByStudyAndSleep) },
		"empty":       func() ([]byte, error) { return RenderScoreVsAttendance(nil) },
		"single":      func() ([]byte, error) { return RenderStudySleep(data.AvgScoreByStudyAndSleep[:1]) },
	} {
		t.Run(name, func(t *testing.T) {
			out, err := render()
			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, chartWidth, img.Bounds().Dx())
			assert.Equal(t, chartHeight, img.Bounds().Dy())
		})
	}
}

func TestDotWidthForScore(t *testing.T) {
	assert.Equal(t, 3.0, dotWidthForScore(-5))
	assert.Equal(t, 12.0, dotWidthForScore(100))
	assert.Equal(t, 12.0, dotWidthForScore(250))
}

func TestScoreColorThresholds(t *testing.T) {
	green := drawing.ColorFromHex("10b981")
	amber := drawing.ColorFromHex("f59e0b")
	red := drawing.ColorFromHex("ef4444")

	assert.Equal(t, green, scoreColor(90))
	assert.Equal(t, green, scoreColor(35))
	assert.Equal(t, amber, scoreColor(34.99))
	assert.Equal(t, amber, scoreColor(30))
	assert.Equal(t, red, scoreColor(29.99))
	assert.Equal(t, red, scoreColor(0))
}
