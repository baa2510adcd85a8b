package model

// PaginatedResponse 归一化后的分页结果
type PaginatedResponse struct {
	Data       []StudentRecord `json:"data"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// AggregationResult 只包含上游返回了的统计项
type AggregationResult struct {
	Field string   `json:"field"`
	Avg   *float64 `json:"avg,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	Sum   *float64 `json:"sum,omitempty"`
	Count *float64 `json:"count,omitempty"`
}

type AggregateOp string

const (
	AggAvg   AggregateOp = "avg"
	AggMin   AggregateOp = "min"
	AggMax   AggregateOp = "max"
	AggSum   AggregateOp = "sum"
	AggCount AggregateOp = "count"
)

// DefaultAggregateOps 未指定统计项时使用
var DefaultAggregateOps = []AggregateOp{AggAvg, AggMin, AggMax, AggCount}

func IsAggregateOp(op string) bool {
	switch AggregateOp(op) {
	case AggAvg, AggMin, AggMax, AggSum, AggCount:
		return true
	}
	return false
}

// GroupAggregate 网关按 groupBy 分组时每组的统计
type GroupAggregate struct {
	Group float64 `json:"group"`
	AggregationResult
}
