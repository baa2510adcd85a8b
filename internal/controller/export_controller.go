package controller

import (
	"exam_dashboard/internal/service"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ExportController struct {
	Export *service.ExportService
}

func NewExportController(export *service.ExportService) *ExportController {
	return &ExportController{Export: export}
}

// Download GET /export.xlsx 导出全部记录
func (c *ExportController) Download(ctx *gin.Context) {
	res, err := c.Export.Export(ctx.Request.Context())
	if err != nil {
		logger.Log.Error("Error exporting records", zap.Error(err))
		util.BadGateway(ctx, "Failed to export student records")
		return
	}

	if res.URL != "" {
		ctx.Header("X-Export-URL", res.URL)
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	ctx.Data(http.StatusOK, util.MimeXLSX, res.Content)
}

// Latest GET /export/latest 跳转到最近一次归档
func (c *ExportController) Latest(ctx *gin.Context) {
	url, ok := c.Export.LatestURL()
	if !ok {
		util.NotFound(ctx)
		return
	}
	ctx.Redirect(http.StatusFound, url)
}
