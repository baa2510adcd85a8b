// @title Student Records Gateway API
// @version 1.0
// @description 学生学习/出勤/考试记录看板及其参考网关。
// @BasePath /

package main

import (
	"exam_dashboard/internal/app"
	"exam_dashboard/internal/config"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"flag"
	"log"
	"path/filepath"
)

func main() {
	// 命令行参数
	role := flag.String("role", util.RoleDashboard, "运行角色：dashboard（看板）或 gateway（参考网关）")
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	if *role != util.RoleDashboard && *role != util.RoleGateway {
		log.Fatalf("Unknown role %q", *role)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Role = *role

	application := app.NewApp(cfg)
	application.ConfigFile = filepath.Join(*configDir, "config.yaml")
	defer logger.Log.Sync()

	application.Run()
}
