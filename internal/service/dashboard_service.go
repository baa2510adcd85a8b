package service

import (
	"context"
	"errors"
	"exam_dashboard/internal/gateway"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	DefaultSortBy   = "student_id"
)

// PageSizes 每页条数可选项
var PageSizes = []int{5, 10, 20, 50}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash 一次性提示消息，渲染后清除
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// ViewState 一个浏览器会话的看板状态：
// 检索/浏览模式由 SearchQuery 决定，PendingDelete 非空表示删除确认框打开。
// Data 为最近一次成功拉取的表格数据，拉取失败时保持不变。
// Fresh 表示 Data 刚由上一次操作拉取，下一次页面渲染可以直接使用。
type ViewState struct {
	SearchQuery   string                   `json:"searchQuery"`
	Page          int                      `json:"page"`
	PageSize      int                      `json:"pageSize"`
	SortBy        string                   `json:"sortBy"`
	SortOrder     model.SortOrder          `json:"sortOrder"`
	PendingDelete *int64                   `json:"pendingDelete,omitempty"`
	DialogOpen    bool                     `json:"dialogOpen"`
	Form          RecordForm               `json:"form"`
	Flashes       []Flash                  `json:"flashes,omitempty"`
	Data          *model.PaginatedResponse `json:"data,omitempty"`
	Fresh         bool                     `json:"fresh,omitempty"`
}

func NewViewState() *ViewState {
	return &ViewState{
		Page:      1,
		PageSize:  DefaultPageSize,
		SortBy:    DefaultSortBy,
		SortOrder: model.SortAsc,
	}
}

func (s *ViewState) normalize() {
	if s.Page < 1 {
		s.Page = 1
	}
	if !isAllowedPageSize(s.PageSize) {
		s.PageSize = DefaultPageSize
	}
	if !model.IsSortableField(s.SortBy) {
		s.SortBy = DefaultSortBy
	}
	if s.SortOrder != model.SortDesc {
		s.SortOrder = model.SortAsc
	}
}

// Searching 检索词非空时走检索接口
func (s *ViewState) Searching() bool {
	return strings.TrimSpace(s.SearchQuery) != ""
}

func (s *ViewState) DeleteConfirmPending() bool {
	return s.PendingDelete != nil
}

func (s *ViewState) AddFlash(kind FlashKind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
}

// TakeFlashes 取出并清空提示消息
func (s *ViewState) TakeFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// fetchKey 决定表格数据的查询参数，变化时才需要重新拉取
type fetchKey struct {
	search    string
	page      int
	pageSize  int
	sortBy    string
	sortOrder model.SortOrder
}

func (s *ViewState) key() fetchKey {
	return fetchKey{s.SearchQuery, s.Page, s.PageSize, s.SortBy, s.SortOrder}
}

func isAllowedPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}

// RecordGateway 看板用到的网关操作
type RecordGateway interface {
	ListRecords(ctx context.Context, params gateway.ListParams) (*model.PaginatedResponse, error)
	Search(ctx context.Context, q string, page, limit int) (*model.PaginatedResponse, error)
	CreateRecord(ctx context.Context, fields model.NewStudentRecord) (*model.StudentRecord, error)
	DeleteRecord(ctx context.Context, id int64) bool
}

type DashboardService struct {
	Gateway RecordGateway
}

func NewDashboardService(gw RecordGateway) *DashboardService {
	return &DashboardService{Gateway: gw}
}

// Load 每次渲染页面时拉取数据。上一次操作刚拉取过（POST 后重定向）则直接使用一次
func (s *DashboardService) Load(ctx context.Context, st *ViewState) error {
	if st.Fresh && st.Data != nil {
		st.Fresh = false
		return nil
	}
	err := s.Fetch(ctx, st)
	st.Fresh = false
	return err
}

// Fetch 按当前模式拉取表格数据。失败时保留之前的数据并提示
func (s *DashboardService) Fetch(ctx context.Context, st *ViewState) error {
	var (
		page *model.PaginatedResponse
		err  error
	)
	if st.Searching() {
		page, err = s.Gateway.Search(ctx, st.SearchQuery, st.Page, st.PageSize)
	} else {
		page, err = s.Gateway.ListRecords(ctx, gateway.ListParams{
			Page:      st.Page,
			PageSize:  st.PageSize,
			SortBy:    st.SortBy,
			SortOrder: st.SortOrder,
		})
	}
	if err != nil {
		logger.Log.Error("Error fetching data", zap.Bool("searching", st.Searching()), zap.Error(err))
		st.AddFlash(FlashError, "Failed to load student records")
		return err
	}

	st.Data = page
	st.Fresh = true
	return nil
}

func (s *DashboardService) refetchIfChanged(ctx context.Context, st *ViewState, before fetchKey) error {
	if st.key() == before && st.Data != nil {
		return nil
	}
	return s.Fetch(ctx, st)
}

// SetSearch 修改检索词并回到第一页；清空检索词即回到分页浏览
func (s *DashboardService) SetSearch(ctx context.Context, st *ViewState, query string) error {
	before := st.key()
	st.SearchQuery = query
	st.Page = 1
	return s.refetchIfChanged(ctx, st, before)
}

// ToggleSort 同一列切换升降序，新列从升序开始
func (s *DashboardService) ToggleSort(ctx context.Context, st *ViewState, field string) error {
	if !model.IsSortableField(field) {
		return util.ErrInvalidSortField
	}
	before := st.key()
	if st.SortBy == field {
		if st.SortOrder == model.SortAsc {
			st.SortOrder = model.SortDesc
		} else {
			st.SortOrder = model.SortAsc
		}
	} else {
		st.SortBy = field
		st.SortOrder = model.SortAsc
	}
	return s.refetchIfChanged(ctx, st, before)
}

func (s *DashboardService) SetPage(ctx context.Context, st *ViewState, page int) error {
	if page < 1 {
		page = 1
	}
	before := st.key()
	st.Page = page
	return s.refetchIfChanged(ctx, st, before)
}

// SetPageSize 修改每页条数并回到第一页
func (s *DashboardService) SetPageSize(ctx context.Context, st *ViewState, size int) error {
	if !isAllowedPageSize(size) {
		return util.ErrInvalidPageSize
	}
	before := st.key()
	st.PageSize = size
	st.Page = 1
	return s.refetchIfChanged(ctx, st, before)
}

// RequestDelete 打开删除确认框，不调用网关
func (s *DashboardService) RequestDelete(st *ViewState, id int64) {
	st.PendingDelete = &id
}

// CancelDelete 关闭确认框并丢弃待删除 id，不调用网关
func (s *DashboardService) CancelDelete(st *ViewState) {
	st.PendingDelete = nil
}

// ConfirmDelete 删除待确认的记录，成功后重新拉取当前视图
func (s *DashboardService) ConfirmDelete(ctx context.Context, st *ViewState) error {
	if st.PendingDelete == nil {
		return nil
	}
	id := *st.PendingDelete
	st.PendingDelete = nil

	if !s.Gateway.DeleteRecord(ctx, id) {
		st.AddFlash(FlashError, "Failed to delete student")
		return util.ErrDeleteFailed
	}

	st.AddFlash(FlashSuccess, fmt.Sprintf("Student %d deleted successfully", id))
	return s.Fetch(ctx, st)
}

func (s *DashboardService) OpenDialog(st *ViewState) {
	st.DialogOpen = true
}

// CloseDialog 关闭对话框，已填写的内容保留
func (s *DashboardService) CloseDialog(st *ViewState) {
	st.DialogOpen = false
}

// AddRecord 校验表单后创建记录。校验失败不调用网关，对话框保持打开
func (s *DashboardService) AddRecord(ctx context.Context, st *ViewState, form RecordForm) (*model.StudentRecord, error) {
	st.Form = form
	st.DialogOpen = true

	fields, err := form.Validate()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			st.AddFlash(FlashError, verr.Message)
		}
		return nil, err
	}

	created, err := s.Gateway.CreateRecord(ctx, fields)
	if err != nil {
		logger.Log.Error("Error creating record", zap.Error(err))
		st.AddFlash(FlashError, "Failed to add student. Please try again.")
		return nil, err
	}

	st.AddFlash(FlashSuccess, fmt.Sprintf("Student %s added successfully!", created.StudentID))
	st.Form = RecordForm{}
	st.DialogOpen = false

	// 刷新失败已记录提示，不影响创建结果
	_ = s.Fetch(ctx, st)
	return created, nil
}
