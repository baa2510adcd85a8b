package controller

import (
	"context"
	"errors"
	"exam_dashboard/internal/middleware"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/service"
	"exam_dashboard/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageWindow 分页条当前页两侧显示的页码数
const pageWindow = 2

var columnLabels = map[string]string{
	"student_id":         "Student ID",
	"hours_studied":      "Hours Studied",
	"sleep_hours":        "Sleep Hours",
	"attendance_percent": "Attendance %",
	"previous_scores":    "Previous Scores",
	"exam_score":         "Exam Score",
}

type DashboardController struct {
	Dashboard *service.DashboardService
	Sessions  service.SessionStore
}

func NewDashboardController(dashboard *service.DashboardService, sessions service.SessionStore) *DashboardController {
	return &DashboardController{Dashboard: dashboard, Sessions: sessions}
}

type column struct {
	Field  string
	Label  string
	Active bool
	Desc   bool
}

type dashboardPage struct {
	State     *service.ViewState
	Data      *model.PaginatedResponse
	Flashes   []service.Flash
	Columns   []column
	PageSizes []int
	Pages     []int
	HasPrev   bool
	HasNext   bool
}

func buildPage(st *service.ViewState, flashes []service.Flash) dashboardPage {
	p := dashboardPage{
		State:     st,
		Data:      st.Data,
		Flashes:   flashes,
		PageSizes: service.PageSizes,
	}
	for _, f := range model.SortableFields {
		p.Columns = append(p.Columns, column{
			Field:  f,
			Label:  columnLabels[f],
			Active: st.SortBy == f,
			Desc:   st.SortBy == f && st.SortOrder == model.SortDesc,
		})
	}

	totalPages := 0
	if st.Data != nil {
		totalPages = st.Data.TotalPages
	}
	from := st.Page - pageWindow
	if from < 1 {
		from = 1
	}
	to := st.Page + pageWindow
	if to > totalPages {
		to = totalPages
	}
	for i := from; i <= to; i++ {
		p.Pages = append(p.Pages, i)
	}
	p.HasPrev = st.Page > 1
	p.HasNext = st.Page < totalPages
	return p
}

func wantsJSON(ctx *gin.Context) bool {
	return ctx.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func (c *DashboardController) load(ctx *gin.Context) (string, *service.ViewState, bool) {
	id := middleware.GetSessionID(ctx)
	st, err := c.Sessions.Load(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return "", nil, false
	}
	return id, st, true
}

func (c *DashboardController) viewJSON(ctx *gin.Context, st *service.ViewState, flashes []service.Flash) {
	util.Success(ctx, gin.H{
		"state":   st,
		"flashes": flashes,
	})
}

// mutate 在会话状态上执行一次操作并保存。浏览器请求重定向回首页，JSON 请求直接返回新状态
func (c *DashboardController) mutate(ctx *gin.Context, fn func(context.Context, *service.ViewState) error) {
	id, st, ok := c.load(ctx)
	if !ok {
		return
	}

	if err := fn(ctx.Request.Context(), st); err != nil {
		if errors.Is(err, util.ErrInvalidSortField) || errors.Is(err, util.ErrInvalidPageSize) {
			util.BadRequest(ctx, err.Error())
			return
		}
		// 其他错误已经写入提示消息
	}

	var flashes []service.Flash
	asJSON := wantsJSON(ctx)
	if asJSON {
		flashes = st.TakeFlashes()
		// 不会重定向，下一次页面渲染需要重新拉取
		st.Fresh = false
	}

	if err := c.Sessions.Save(ctx.Request.Context(), id, st); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if asJSON {
		c.viewJSON(ctx, st, flashes)
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}

// Index 渲染看板页面，刷新时重新拉取数据
func (c *DashboardController) Index(ctx *gin.Context) {
	id, st, ok := c.load(ctx)
	if !ok {
		return
	}

	_ = c.Dashboard.Load(ctx.Request.Context(), st)
	flashes := st.TakeFlashes()

	if err := c.Sessions.Save(ctx.Request.Context(), id, st); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "dashboard.tmpl", buildPage(st, flashes))
}

// View GET /api/view
func (c *DashboardController) View(ctx *gin.Context) {
	id, st, ok := c.load(ctx)
	if !ok {
		return
	}

	_ = c.Dashboard.Load(ctx.Request.Context(), st)
	flashes := st.TakeFlashes()

	if err := c.Sessions.Save(ctx.Request.Context(), id, st); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	c.viewJSON(ctx, st, flashes)
}

func (c *DashboardController) Search(ctx *gin.Context) {
	query := ctx.PostForm("q")
	c.mutate(ctx, func(rc context.Context, st *service.ViewState) error {
		return c.Dashboard.SetSearch(rc, st, query)
	})
}

func (c *DashboardController) Sort(ctx *gin.Context) {
	field := ctx.Param("field")
	c.mutate(ctx, func(rc context.Context, st *service.ViewState) error {
		return c.Dashboard.ToggleSort(rc, st, field)
	})
}

func (c *DashboardController) Page(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.Param("page"))
	if err != nil {
		util.BadRequest(ctx, "Invalid page")
		return
	}
	c.mutate(ctx, func(rc context.Context, st *service.ViewState) error {
		return c.Dashboard.SetPage(rc, st, page)
	})
}

func (c *DashboardController) PageSize(ctx *gin.Context) {
	size, err := strconv.Atoi(ctx.PostForm("page_size"))
	if err != nil {
		util.BadRequest(ctx, "Invalid page size")
		return
	}
	c.mutate(ctx, func(rc context.Context, st *service.ViewState) error {
		return c.Dashboard.SetPageSize(rc, st, size)
	})
}

func (c *DashboardController) OpenDialog(ctx *gin.Context) {
	c.mutate(ctx, func(_ context.Context, st *service.ViewState) error {
		c.Dashboard.OpenDialog(st)
		return nil
	})
}

func (c *DashboardController) CloseDialog(ctx *gin.Context) {
	c.mutate(ctx, func(_ context.Context, st *service.ViewState) error {
		c.Dashboard.CloseDialog(st)
		return nil
	})
}

// AddRecord 提交新增对话框
func (c *DashboardController) AddRecord(ctx *gin.Context) {
	var form service.RecordForm
	if err := ctx.ShouldBind(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	c.mutate(ctx, func(rc context.Context, st *service.ViewState) error {
		_, err := c.Dashboard.AddRecord(rc, st, form)
		return err
	})
}

func (c *DashboardController) RequestDelete(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "Invalid record id")
		return
	}
	c.mutate(ctx, func(_ context.Context, st *service.ViewState) error {
		c.Dashboard.RequestDelete(st, id)
		return nil
	})
}

func (c *DashboardController) ConfirmDelete(ctx *gin.Context) {
	c.mutate(ctx, c.Dashboard.ConfirmDelete)
}

func (c *DashboardController) CancelDelete(ctx *gin.Context) {
	c.mutate(ctx, func(_ context.Context, st *service.ViewState) error {
		c.Dashboard.CancelDelete(st)
		return nil
	})
}
