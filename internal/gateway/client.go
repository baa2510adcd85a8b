package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"exam_dashboard/internal/config"
	"exam_dashboard/internal/model"
	"exam_dashboard/pkg/logger"
	"exam_dashboard/pkg/monitoring"
	"exam_dashboard/pkg/tracing"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrCreateFailed       = errors.New("failed to create record")
	ErrUnexpectedStatus   = errors.New("unexpected gateway status")
	ErrMalformedResponse  = errors.New("malformed gateway response")
	ErrInvalidAggregation = errors.New("invalid aggregation field")
)

// ListParams 列表查询参数，零值字段不发送
type ListParams struct {
	Page      int
	PageSize  int
	SortBy    string
	SortOrder model.SortOrder
	Search    string
}

// Client 远程记录网关的 HTTP 客户端。不做缓存、重试，失败直接返回给调用方
type Client struct {
	mu      sync.RWMutex
	baseURL string
	http    *http.Client

	// NewDisplayID 生成展示用学号，测试中可替换
	NewDisplayID func() string
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		http:         &http.Client{Timeout: cfg.Timeout},
		NewDisplayID: GenerateDisplayID,
	}
}

// SetBaseURL 配置热更新时切换网关地址
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// do 发出一次请求并记录指标和 span。调用方负责关闭 Body
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload interface{}) (*http.Response, error) {
	ctx, span := tracing.Tracer.Start(ctx, "gateway."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	endpoint := c.BaseURL() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", endpoint),
	)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitoring.ObserveGateway(op, 0, started)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("gateway %s: %w", op, err)
	}
	monitoring.ObserveGateway(op, resp.StatusCode, started)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	logger.Log.Debug("gateway request",
		zap.String("op", op),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)
	return resp, nil
}

func isOK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func readOK(resp *http.Response, op string) ([]byte, error) {
	defer resp.Body.Close()
	if !isOK(resp) {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("gateway %s: %w: %s", op, ErrUnexpectedStatus, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func recordPath(id int64) string {
	return "/records/" + strconv.FormatInt(id, 10)
}

// ListRecords GET /records，降序排序编码为 "-字段名"
func (c *Client) ListRecords(ctx context.Context, params ListParams) (*model.PaginatedResponse, error) {
	query := url.Values{}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("limit", strconv.Itoa(params.PageSize))
	}
	if params.SortBy != "" {
		query.Set("sort", SortParam(params.SortBy, params.SortOrder))
	}
	if params.Search != "" {
		query.Set("q", params.Search)
	}

	resp, err := c.do(ctx, "list", http.MethodGet, "/records", query, nil)
	if err != nil {
		return nil, err
	}
	body, err := readOK(resp, "list")
	if err != nil {
		return nil, err
	}
	return normalizePage(body, params.Page, params.PageSize)
}

// SortParam 将排序列和方向编码为网关的 sort 参数
func SortParam(field string, order model.SortOrder) string {
	if order == model.SortDesc {
		return "-" + field
	}
	return field
}

// Search GET /search，query 原样作为单个检索词传递
func (c *Client) Search(ctx context.Context, q string, page, limit int) (*model.PaginatedResponse, error) {
	query := url.Values{}
	query.Set("q", q)
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.do(ctx, "search", http.MethodGet, "/search", query, nil)
	if err != nil {
		return nil, err
	}
	body, err := readOK(resp, "search")
	if err != nil {
		return nil, err
	}
	return normalizePage(body, page, limit)
}

// GetRecord 记录不存在（非 2xx）时返回 nil, nil
func (c *Client) GetRecord(ctx context.Context, id int64) (*model.StudentRecord, error) {
	resp, err := c.do(ctx, "get", http.MethodGet, recordPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !isOK(resp) {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var record model.StudentRecord
	if err := json.Unmarshal(unwrapData(body), &record); err != nil {
		return nil, fmt.Errorf("gateway get: %w", err)
	}
	return &record, nil
}

// GetAllRecords 不分页拉取全部记录，供图表聚合使用
func (c *Client) GetAllRecords(ctx context.Context) ([]model.StudentRecord, error) {
	resp, err := c.do(ctx, "all", http.MethodGet, "/records", nil, nil)
	if err != nil {
		return nil, err
	}
	body, err := readOK(resp, "all")
	if err != nil {
		return nil, err
	}
	items, _, err := extractItems(body)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CreateRecord 生成展示学号后提交。优先返回响应中的 data，其次响应体，最后是本地构造的记录
func (c *Client) CreateRecord(ctx context.Context, fields model.NewStudentRecord) (*model.StudentRecord, error) {
	local := model.StudentRecord{
		StudentID:         c.NewDisplayID(),
		HoursStudied:      fields.HoursStudied,
		SleepHours:        fields.SleepHours,
		AttendancePercent: fields.AttendancePercent,
		PreviousScores:    fields.PreviousScores,
		ExamScore:         fields.ExamScore,
	}
	logger.Log.Debug("creating record via gateway", zap.String("student_id", local.StudentID))

	resp, err := c.do(ctx, "create", http.MethodPost, "/records", nil, local)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !isOK(resp) {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrCreateFailed, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || !isObject(body) {
		return &local, nil
	}

	// 服务端字段覆盖到本地副本上，缺失字段保留本地值
	created := local
	if err := json.Unmarshal(unwrapData(body), &created); err != nil {
		logger.Log.Warn("unusable create response, keeping local record", zap.Error(err))
		return &local, nil
	}
	return &created, nil
}

// UpdateRecord 先取原记录再合并提交完整对象。原记录不存在或更新失败时返回 nil, nil
func (c *Client) UpdateRecord(ctx context.Context, id int64, patch model.RecordPatch) (*model.StudentRecord, error) {
	existing, err := c.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	merged := patch.Apply(*existing)

	resp, err := c.do(ctx, "update", http.MethodPut, recordPath(id), nil, merged)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if !isOK(resp) {
		return nil, nil
	}
	return &merged, nil
}

// Ping 取一条记录确认网关可用
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("page", "1")
	query.Set("limit", "1")
	resp, err := c.do(ctx, "ping", http.MethodGet, "/records", query, nil)
	if err != nil {
		return err
	}
	_, err = readOK(resp, "ping")
	return err
}

// DeleteRecord 只返回成功与否，网络错误记日志后返回 false
func (c *Client) DeleteRecord(ctx context.Context, id int64) bool {
	resp, err := c.do(ctx, "delete", http.MethodDelete, recordPath(id), nil, nil)
	if err != nil {
		logger.Log.Error("delete record failed", zap.Int64("id", id), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return isOK(resp)
}

type aggregateBody struct {
	Avg   *float64 `json:"avg"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Sum   *float64 `json:"sum"`
	Count *float64 `json:"count"`
}

func (b aggregateBody) empty() bool {
	return b.Avg == nil && b.Min == nil && b.Max == nil && b.Sum == nil && b.Count == nil
}

// Aggregate GET /aggregate，未指定 ops 时使用 avg/min/max/count
func (c *Client) Aggregate(ctx context.Context, field string, ops []model.AggregateOp, groupBy string) (*model.AggregationResult, error) {
	if field == "" {
		return nil, ErrInvalidAggregation
	}
	if len(ops) == 0 {
		ops = model.DefaultAggregateOps
	}

	query := url.Values{}
	query.Set("field", field)
	for _, op := range ops {
		query.Add("function", string(op))
	}
	if groupBy != "" {
		query.Set("groupBy", groupBy)
	}

	resp, err := c.do(ctx, "aggregate", http.MethodGet, "/aggregate", query, nil)
	if err != nil {
		return nil, err
	}
	body, err := readOK(resp, "aggregate")
	if err != nil {
		return nil, err
	}

	var parsed aggregateBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gateway aggregate: %w", err)
	}
	if parsed.empty() {
		inner := unwrapData(body)
		if err := json.Unmarshal(inner, &parsed); err != nil {
			return nil, fmt.Errorf("gateway aggregate: %w", err)
		}
	}

	return &model.AggregationResult{
		Field: field,
		Avg:   parsed.Avg,
		Min:   parsed.Min,
		Max:   parsed.Max,
		Sum:   parsed.Sum,
		Count: parsed.Count,
	}, nil
}
