// 手动导入学生记录脚本
//
// 把 xlsx 中的记录直接写入参考网关的数据库，适用于首次部署或批量补录。
// 表头为记录的 JSON 字段名，缺少 student_id 的行会自动生成。
//
// 用法: go run scripts/import_records.go -file records.xlsx

package main

import (
	"context"
	"exam_dashboard/internal/config"
	"exam_dashboard/internal/repository"
	"exam_dashboard/internal/service"
	"exam_dashboard/pkg/database"
	"exam_dashboard/pkg/logger"
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	file := flag.String("file", "", "要导入的 xlsx 文件")
	flag.Parse()
	if *file == "" {
		log.Fatal("请通过 -file 指定 xlsx 文件")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}
	cfg.Role = "import"

	logger.InitLogger(&cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("无法打开文件: %v", err)
	}
	defer f.Close()

	records := service.NewRecordService(repository.NewRecordRepository(db))
	n, err := records.Import(context.Background(), f)
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}
	log.Printf("完成！共导入 %d 条记录", n)
}
