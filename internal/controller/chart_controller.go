package controller

import (
	"context"
	"errors"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/service"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Aggregator 看板透传的网关统计接口
type Aggregator interface {
	Aggregate(ctx context.Context, field string, ops []model.AggregateOp, groupBy string) (*model.AggregationResult, error)
}

type ChartController struct {
	Charts     *service.ChartService
	Aggregator Aggregator
}

func NewChartController(charts *service.ChartService, aggregator Aggregator) *ChartController {
	return &ChartController{Charts: charts, Aggregator: aggregator}
}

// ChartData GET /api/charts
func (c *ChartController) ChartData(ctx *gin.Context) {
	data, err := c.Charts.ChartData(ctx.Request.Context())
	if err != nil {
		logger.Log.Error("Error fetching chart data", zap.Error(err))
		util.BadGateway(ctx, "Failed to load chart data")
		return
	}
	util.Success(ctx, data)
}

func (c *ChartController) renderPNG(ctx *gin.Context, render func(model.ChartData) ([]byte, error)) {
	data, err := c.Charts.ChartData(ctx.Request.Context())
	if err != nil {
		logger.Log.Error("Error fetching chart data", zap.Error(err))
		util.BadGateway(ctx, "Failed to load chart data")
		return
	}

	png, err := render(data)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}

// ScoreVsAttendance GET /charts/score-vs-attendance.png
func (c *ChartController) ScoreVsAttendance(ctx *gin.Context) {
	c.renderPNG(ctx, func(d model.ChartData) ([]byte, error) {
		return service.RenderScoreVsAttendance(d.ScoreVsAttendance)
	})
}

// StudySleep GET /charts/study-sleep.png
func (c *ChartController) StudySleep(ctx *gin.Context) {
	c.renderPNG(ctx, func(d model.ChartData) ([]byte, error) {
		return service.RenderStudySleep(d.AvgScoreByStudyAndSleep)
	})
}

// Aggregate GET /api/aggregate?field=exam_score&function=avg&function=max&groupBy=
func (c *ChartController) Aggregate(ctx *gin.Context) {
	field := ctx.Query("field")
	if !model.IsNumericField(field) {
		util.BadRequest(ctx, "Invalid field")
		return
	}

	var ops []model.AggregateOp
	for _, fn := range ctx.QueryArray("function") {
		if !model.IsAggregateOp(fn) {
			util.BadRequest(ctx, "Invalid aggregate function: "+fn)
			return
		}
		ops = append(ops, model.AggregateOp(fn))
	}

	res, err := c.Aggregator.Aggregate(ctx.Request.Context(), field, ops, ctx.Query("groupBy"))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Log.Error("Error aggregating", zap.String("field", field), zap.Error(err))
		util.BadGateway(ctx, "Failed to aggregate records")
		return
	}
	util.Success(ctx, res)
}
