package service

import (
	"bytes"
	"context"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExportResult URL 仅在归档到存储成功时非空
type ExportResult struct {
	Filename string
	Content  []byte
	URL      string
}

// ExportService 把全量记录导出为 xlsx，并归档一份到存储。
// Keep > 0 时只保留最近 Keep 份归档
type ExportService struct {
	Source  RecordSource
	Storage *StorageService
	Keep    int
	now     func() time.Time

	mu       sync.Mutex
	archived []string
}

func NewExportService(source RecordSource, storage *StorageService, keep int) *ExportService {
	return &ExportService{Source: source, Storage: storage, Keep: keep, now: time.Now}
}

func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	records, err := s.Source.GetAllRecords(ctx)
	if err != nil {
		return nil, err
	}

	content, err := WriteRecordsXLSX(records)
	if err != nil {
		return nil, err
	}

	res := &ExportResult{
		Filename: exportFilename(s.now().Unix()),
		Content:  content,
	}

	// 归档失败不影响下载
	if s.Storage != nil {
		url, err := s.Storage.Upload(ctx, res.Filename, bytes.NewReader(content), int64(len(content)), util.MimeXLSX)
		if err != nil {
			logger.Log.Warn("Failed to archive export", zap.String("file", res.Filename), zap.Error(err))
		} else {
			res.URL = url
			s.rotate(ctx, res.Filename)
		}
	}

	logger.Log.Info("Exported student records", zap.Int("count", len(records)), zap.String("url", res.URL))
	return res, nil
}

// rotate 记录新归档并删除超出保留数量的旧归档
func (s *ExportService) rotate(ctx context.Context, filename string) {
	s.mu.Lock()
	if n := len(s.archived); n > 0 && s.archived[n-1] == filename {
		// 同一秒内重复导出，覆盖了同名文件
		s.mu.Unlock()
		return
	}
	s.archived = append(s.archived, filename)
	var expired []string
	if s.Keep > 0 && len(s.archived) > s.Keep {
		cut := len(s.archived) - s.Keep
		expired = append(expired, s.archived[:cut]...)
		s.archived = append([]string(nil), s.archived[cut:]...)
	}
	s.mu.Unlock()

	for _, name := range expired {
		if err := s.Storage.Delete(ctx, name); err != nil {
			logger.Log.Warn("Failed to remove old export", zap.String("file", name), zap.Error(err))
		}
	}
}

// LatestURL 最近一次归档的地址
func (s *ExportService) LatestURL() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.archived) == 0 {
		return "", false
	}
	return s.Storage.GetURL(s.archived[len(s.archived)-1]), true
}
