package app

import (
	"context"
	"exam_dashboard/internal/config"
	"exam_dashboard/internal/controller"
	"exam_dashboard/internal/gateway"
	"exam_dashboard/internal/repository"
	"exam_dashboard/internal/service"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/configwatcher"
	"exam_dashboard/pkg/database"
	"exam_dashboard/pkg/logger"
	"exam_dashboard/pkg/monitoring"
	"exam_dashboard/pkg/security"
	"exam_dashboard/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigFile      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Gateway         *gateway.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type services struct {
	dashboard *service.DashboardService
	chart     *service.ChartService
	export    *service.ExportService
	storage   *service.StorageService
	sessions  service.SessionStore
	records   *service.RecordService
}

type controllers struct {
	dashboard *controller.DashboardController
	chart     *controller.ChartController
	export    *controller.ExportController
	record    *controller.RecordController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// initDashboard 看板：网关客户端 + 会话存储 + 图表/导出
func (a *App) initDashboard(cfg *config.Config) (*services, *controllers) {
	a.Gateway = gateway.NewClient(cfg.Gateway)

	s := &services{}
	if cfg.Session.Store == "redis" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		a.Redis = rdb
		s.sessions = service.NewRedisSessionStore(rdb, cfg.Session.TTL)
	} else {
		s.sessions = service.NewMemorySessionStore(cfg.Session.TTL)
	}

	s.storage = service.NewStorageService(cfg)
	s.dashboard = service.NewDashboardService(a.Gateway)
	s.chart = service.NewChartService(a.Gateway)
	s.export = service.NewExportService(a.Gateway, s.storage, cfg.Storage.KeepExports)

	checks := []controller.HealthCheck{{Name: "gateway", Check: a.Gateway.Ping}}
	if a.Redis != nil {
		checks = append(checks, controller.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}})
	}

	c := &controllers{
		dashboard: controller.NewDashboardController(s.dashboard, s.sessions),
		chart:     controller.NewChartController(s.chart, a.Gateway),
		export:    controller.NewExportController(s.export),
		health:    controller.NewHealthController(checks...),
	}

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		if newCfg.Gateway.BaseURL != a.Gateway.BaseURL() {
			logger.Log.Info("Gateway base URL changed",
				zap.String("from", a.Gateway.BaseURL()),
				zap.String("to", newCfg.Gateway.BaseURL))
			a.Gateway.SetBaseURL(newCfg.Gateway.BaseURL)
		}
	})
	return s, c
}

// initGateway 参考网关：mysql 存储记录
func (a *App) initGateway(cfg *config.Config) (*services, *controllers) {
	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	a.DB = db

	s := &services{
		records: service.NewRecordService(repository.NewRecordRepository(db)),
	}

	c := &controllers{
		record: controller.NewRecordController(s.records),
		health: controller.NewHealthController(controller.HealthCheck{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}}),
	}
	return s, c
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(cfg.Role))
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &App{
		Config:     cfg,
		ConfigFile: filepath.Join("configs", "config.yaml"),
	}

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Role, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	var (
		s *services
		c *controllers
	)
	if cfg.Role == util.RoleGateway {
		s, c = app.initGateway(cfg)
	} else {
		s, c = app.initDashboard(cfg)
	}
	app.services = s

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.ApplyMode(newCfg.Server.Mode)
	})

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Role == util.RoleGateway {
		app.registerGatewayRoutes(router, c)
	} else {
		app.registerDashboardRoutes(router, c, cfg)
		if cfg.Storage.Type == util.StorageLocal {
			router.Static("/exports", cfg.Storage.LocalPath)
		}
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port), zap.String("role", a.Config.Role))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := configwatcher.WatchConfig(watchCtx, a.ConfigFile, a.applyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
