package controller

import (
	"errors"
	"exam_dashboard/internal/model"
	"exam_dashboard/internal/repository"
	"exam_dashboard/internal/service"
	"exam_dashboard/internal/util"
	"exam_dashboard/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecordController 参考网关的记录接口
type RecordController struct {
	Records *service.RecordService
}

func NewRecordController(records *service.RecordService) *RecordController {
	return &RecordController{Records: records}
}

// ListRecordsRequest 列表查询参数
// swagger:model ListRecordsRequest
type ListRecordsRequest struct {
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Sort  string `form:"sort"`
	Q     string `form:"q"`
}

// AggregateResponse 分组统计结果
// swagger:model AggregateResponse
type AggregateResponse struct {
	Field  string                 `json:"field"`
	Groups []model.GroupAggregate `json:"groups"`
}

func writePage(ctx *gin.Context, page *service.RecordPage) {
	util.GatewayOK(ctx, http.StatusOK, util.PageData{
		Items: page.Items,
		Pagination: util.Pagination{
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	})
}

func (c *RecordController) handleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrRecordNotFound):
		util.GatewayError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrInvalidSortField),
		errors.Is(err, util.ErrInvalidField),
		errors.Is(err, util.ErrInvalidAggregate):
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
	default:
		logger.Log.Error("Record gateway error", zap.String("path", ctx.FullPath()), zap.Error(err))
		util.GatewayError(ctx, http.StatusInternalServerError, "Internal server error")
	}
}

// ListRecords godoc
// @Summary 分页获取学生记录
// @Tags 记录
// @Produce json
// @Param page query int false "页码，与 limit 都省略时返回全部记录"
// @Param limit query int false "每页条数"
// @Param sort query string false "排序列，前缀 - 表示降序"
// @Param q query string false "检索词，非空时等同 /search"
// @Success 200 {object} util.GatewayResponse{data=util.PageData}
// @Failure 400 {object} util.GatewayResponse
// @Router /records [get]
func (c *RecordController) ListRecords(ctx *gin.Context) {
	var req ListRecordsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	q := repository.RecordQuery{Page: req.Page, Limit: req.Limit, Sort: req.Sort, Q: req.Q}
	var (
		page *service.RecordPage
		err  error
	)
	switch {
	case req.Q != "":
		page, err = c.Records.Search(ctx.Request.Context(), q)
	case req.Page == 0 && req.Limit == 0:
		// 未指定分页参数时返回全部记录
		page, err = c.Records.All(ctx.Request.Context(), req.Sort)
	default:
		page, err = c.Records.List(ctx.Request.Context(), q)
	}
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	writePage(ctx, page)
}

// Search godoc
// @Summary 检索学生记录
// @Tags 记录
// @Produce json
// @Param q query string true "检索词"
// @Param page query int false "页码"
// @Param limit query int false "每页条数"
// @Success 200 {object} util.GatewayResponse{data=util.PageData}
// @Router /search [get]
func (c *RecordController) Search(ctx *gin.Context) {
	var req ListRecordsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	page, err := c.Records.Search(ctx.Request.Context(), repository.RecordQuery{Page: req.Page, Limit: req.Limit, Sort: req.Sort, Q: req.Q})
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	writePage(ctx, page)
}

// GetRecord godoc
// @Summary 获取单条记录
// @Tags 记录
// @Produce json
// @Param id path int true "记录ID"
// @Success 200 {object} util.GatewayResponse{data=model.StudentRecord}
// @Failure 404 {object} util.GatewayResponse
// @Router /records/{id} [get]
func (c *RecordController) GetRecord(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.GatewayError(ctx, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := c.Records.Get(ctx.Request.Context(), id)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	util.GatewayOK(ctx, http.StatusOK, record)
}

// CreateRecord godoc
// @Summary 新增记录
// @Tags 记录
// @Accept json
// @Produce json
// @Param request body service.CreateRecordRequest true "记录"
// @Success 201 {object} util.GatewayResponse{data=model.StudentRecord}
// @Failure 400 {object} util.GatewayResponse
// @Router /records [post]
func (c *RecordController) CreateRecord(ctx *gin.Context) {
	var req service.CreateRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	record, err := c.Records.Create(ctx.Request.Context(), req)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	util.GatewayOK(ctx, http.StatusCreated, record)
}

// UpdateRecord godoc
// @Summary 更新记录
// @Description 只修改请求体中出现的字段
// @Tags 记录
// @Accept json
// @Produce json
// @Param id path int true "记录ID"
// @Param request body model.RecordPatch true "需要修改的字段"
// @Success 200 {object} util.GatewayResponse{data=model.StudentRecord}
// @Failure 404 {object} util.GatewayResponse
// @Router /records/{id} [put]
func (c *RecordController) UpdateRecord(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.GatewayError(ctx, http.StatusBadRequest, "invalid record id")
		return
	}

	var patch model.RecordPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	record, err := c.Records.Update(ctx.Request.Context(), id, patch)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	util.GatewayOK(ctx, http.StatusOK, record)
}

// DeleteRecord godoc
// @Summary 删除记录
// @Tags 记录
// @Produce json
// @Param id path int true "记录ID"
// @Success 200 {object} util.GatewayResponse
// @Failure 404 {object} util.GatewayResponse
// @Router /records/{id} [delete]
func (c *RecordController) DeleteRecord(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.GatewayError(ctx, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := c.Records.Delete(ctx.Request.Context(), id); err != nil {
		c.handleError(ctx, err)
		return
	}
	util.GatewayOK(ctx, http.StatusOK, nil)
}

// Aggregate godoc
// @Summary 数值列统计
// @Description 未指定 function 时返回 avg/min/max/count；指定 groupBy 时按该列分组
// @Tags 记录
// @Produce json
// @Param field query string true "数值列"
// @Param function query []string false "统计项" collectionFormat(multi)
// @Param groupBy query string false "分组列"
// @Success 200 {object} util.GatewayResponse{data=model.AggregationResult}
// @Failure 400 {object} util.GatewayResponse
// @Router /aggregate [get]
func (c *RecordController) Aggregate(ctx *gin.Context) {
	field := ctx.Query("field")
	groupBy := ctx.Query("groupBy")

	res, groups, err := c.Records.Aggregate(ctx.Request.Context(), field, ctx.QueryArray("function"), groupBy)
	if err != nil {
		c.handleError(ctx, err)
		return
	}
	if groupBy != "" {
		util.GatewayOK(ctx, http.StatusOK, AggregateResponse{Field: field, Groups: groups})
		return
	}
	util.GatewayOK(ctx, http.StatusOK, res)
}

// Import godoc
// @Summary 导入 xlsx
// @Description 第一行为表头（记录的 JSON 字段名），缺少 student_id 的行自动生成
// @Tags 记录
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx 文件"
// @Success 201 {object} util.GatewayResponse
// @Failure 400 {object} util.GatewayResponse
// @Router /import [post]
func (c *RecordController) Import(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, "file is required")
		return
	}
	if !util.IsSpreadsheetName(fh.Filename) {
		util.GatewayError(ctx, http.StatusBadRequest, "only .xlsx files are supported")
		return
	}

	f, err := fh.Open()
	if err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	defer f.Close()

	if _, err := util.ValidateMimeType(f, util.AllowedSpreadsheetTypes); err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := f.Seek(0, 0); err != nil {
		util.GatewayError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	n, err := c.Records.Import(ctx.Request.Context(), f)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) || errors.Is(err, util.ErrEmptySpreadsheet) || errors.Is(err, util.ErrMissingColumns) {
			util.GatewayError(ctx, http.StatusBadRequest, err.Error())
			return
		}
		c.handleError(ctx, err)
		return
	}
	util.GatewayOK(ctx, http.StatusCreated, gin.H{"imported": n})
}
