package app

import (
	"exam_dashboard/docs"
	"exam_dashboard/internal/config"
	"exam_dashboard/internal/middleware"
	"exam_dashboard/pkg/logger"
	"exam_dashboard/pkg/monitoring"
	"exam_dashboard/web"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func (a *App) registerDashboardRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	tmpl, err := web.Templates()
	if err != nil {
		logger.Log.Fatal("Failed to parse templates", zap.Error(err))
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	// 图表、统计和导出不依赖会话
	router.GET("/api/charts", c.chart.ChartData)
	router.GET("/charts/score-vs-attendance.png", c.chart.ScoreVsAttendance)
	router.GET("/charts/study-sleep.png", c.chart.StudySleep)
	router.GET("/api/aggregate", c.chart.Aggregate)
	router.GET("/export.xlsx", c.export.Download)
	router.GET("/export/latest", c.export.Latest)

	view := router.Group("/")
	view.Use(middleware.SessionMiddleware(cfg.Session.CookieName, cfg.Session.TTL))
	{
		view.GET("/", c.dashboard.Index)
		view.GET("/api/view", c.dashboard.View)

		view.POST("/search", c.dashboard.Search)
		view.POST("/sort/:field", c.dashboard.Sort)
		view.POST("/page/:page", c.dashboard.Page)
		view.POST("/page-size", c.dashboard.PageSize)

		view.POST("/dialog/open", c.dashboard.OpenDialog)
		view.POST("/dialog/close", c.dashboard.CloseDialog)
		view.POST("/records", c.dashboard.AddRecord)

		view.POST("/records/:id/delete", c.dashboard.RequestDelete)
		view.POST("/delete/confirm", c.dashboard.ConfirmDelete)
		view.POST("/delete/cancel", c.dashboard.CancelDelete)
	}
}

func (a *App) registerGatewayRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	router.GET("/records", c.record.ListRecords)
	router.POST("/records", c.record.CreateRecord)
	router.GET("/records/:id", c.record.GetRecord)
	router.PUT("/records/:id", c.record.UpdateRecord)
	router.DELETE("/records/:id", c.record.DeleteRecord)
	router.GET("/search", c.record.Search)
	router.GET("/aggregate", c.record.Aggregate)
	router.POST("/import", c.record.Import)
}
