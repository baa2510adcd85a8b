package service

import (
	"bytes"
	"context"
	"exam_dashboard/internal/model"
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RecordSource 图表只需要全量记录
type RecordSource interface {
	GetAllRecords(ctx context.Context) ([]model.StudentRecord, error)
}

type ChartService struct {
	Source RecordSource
}

func NewChartService(source RecordSource) *ChartService {
	return &ChartService{Source: source}
}

type bucketKey struct {
	study int
	sleep int
}

type bucketAcc struct {
	sum   float64
	count int
}

// BuildChartData 由全量记录计算两组图表数据：
// 出勤率-成绩散点（保持输入顺序，不去重），
// 以及按 (floor(学习时长), floor(睡眠时长)) 分桶的平均成绩，桶按首次出现的顺序排列。
func BuildChartData(records []model.StudentRecord) model.ChartData {
	points := make([]model.AttendancePoint, 0, len(records))
	order := make([]bucketKey, 0)
	groups := make(map[bucketKey]*bucketAcc)

	for _, r := range records {
		points = append(points, model.AttendancePoint{
			Attendance: r.AttendancePercent,
			Score:      r.ExamScore,
		})

		key := bucketKey{
			study: int(math.Floor(r.HoursStudied)),
			sleep: int(math.Floor(r.SleepHours)),
		}
		acc, ok := groups[key]
		if !ok {
			acc = &bucketAcc{}
			groups[key] = acc
			order = append(order, key)
		}
		acc.sum += r.ExamScore
		acc.count++
	}

	buckets := make([]model.StudySleepBucket, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		buckets = append(buckets, model.StudySleepBucket{
			HoursStudied: key.study,
			HoursSleep:   key.sleep,
			AvgScore:     acc.sum / float64(acc.count),
		})
	}

	return model.ChartData{
		ScoreVsAttendance:       points,
		AvgScoreByStudyAndSleep: buckets,
	}
}

// ChartData 拉取全量记录并聚合，不缓存
func (s *ChartService) ChartData(ctx context.Context) (model.ChartData, error) {
	records, err := s.Source.GetAllRecords(ctx)
	if err != nil {
		return model.ChartData{}, err
	}
	return BuildChartData(records), nil
}

const (
	chartWidth  = 640
	chartHeight = 320
)

var (
	attendanceColor = drawing.ColorFromHex("2563eb")
	highScoreColor  = drawing.ColorFromHex("10b981")
	midScoreColor   = drawing.ColorFromHex("f59e0b")
	lowScoreColor   = drawing.ColorFromHex("ef4444")
)

// scoreColor 平均分 >=35 绿色，>=30 黄色，其余红色
func scoreColor(score float64) drawing.Color {
	switch {
	case score >= 35:
		return highScoreColor
	case score >= 30:
		return midScoreColor
	default:
		return lowScoreColor
	}
}

// pointStyle 只画点不连线
func pointStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}

// RenderScoreVsAttendance 出勤率(0-100) 对考试成绩的散点图 PNG
func RenderScoreVsAttendance(points []model.AttendancePoint) ([]byte, error) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Attendance
		ys[i] = p.Score
	}

	ch := chart.Chart{
		Title:      "Exam Score vs Attendance",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Attendance Percentage",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		YAxis: chart.YAxis{
			Name:  "Exam Score",
			Range: scoreRange(ys),
		},
		Series: scatterSeries("Students", xs, ys, pointStyle(attendanceColor, 4)),
	}
	return renderPNG(ch)
}

// RenderStudySleep 学习时长对睡眠时长的分桶散点，点的大小和颜色反映平均成绩
func RenderStudySleep(buckets []model.StudySleepBucket) ([]byte, error) {
	xs := make([]float64, len(buckets))
	ys := make([]float64, len(buckets))
	for i, b := range buckets {
		xs[i] = float64(b.HoursStudied)
		ys[i] = float64(b.HoursSleep)
	}

	series := scatterSeries("Avg score", xs, ys, pointStyle(lowScoreColor, 4))
	if len(buckets) > 0 {
		// 单点时 scatterSeries 会补一个重复点
		bucketAt := func(index int) model.StudySleepBucket {
			return buckets[min(index, len(buckets)-1)]
		}
		s := series[0].(chart.ContinuousSeries)
		s.Style.DotWidthProvider = func(_ chart.Range, _ chart.Range, index int, _, _ float64) float64 {
			return dotWidthForScore(bucketAt(index).AvgScore)
		}
		s.Style.DotColorProvider = func(_ chart.Range, _ chart.Range, index int, _, _ float64) drawing.Color {
			return scoreColor(bucketAt(index).AvgScore)
		}
		series[0] = s
	}

	ch := chart.Chart{
		Title:      "Average Score by Study & Sleep Hours",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Hours Studied",
			Range: &chart.ContinuousRange{Min: 0, Max: 24},
		},
		YAxis: chart.YAxis{
			Name:  "Hours Slept",
			Range: &chart.ContinuousRange{Min: 0, Max: 24},
		},
		Series: series,
	}
	return renderPNG(ch)
}

// dotWidthForScore 成绩 0-100 映射到 3-12 像素
func dotWidthForScore(score float64) float64 {
	score = math.Max(0, math.Min(100, score))
	return 3 + score/100*9
}

func scoreRange(ys []float64) *chart.ContinuousRange {
	maxY := 100.0
	for _, y := range ys {
		if y > maxY {
			maxY = y
		}
	}
	return &chart.ContinuousRange{Min: 0, Max: maxY}
}

// scatterSeries go-chart 至少需要两个点才能确定坐标范围，空数据和单点时补齐
func scatterSeries(name string, xs, ys []float64, style chart.Style) []chart.Series {
	switch len(xs) {
	case 0:
		return []chart.Series{chart.ContinuousSeries{
			Name:    name,
			XValues: []float64{0, 0},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 0},
		}}
	case 1:
		xs = []float64{xs[0], xs[0]}
		ys = []float64{ys[0], ys[0]}
	}
	return []chart.Series{chart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   style,
	}}
}

func renderPNG(ch chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
