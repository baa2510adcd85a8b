package gateway

import (
	"bytes"
	"encoding/json"
	"exam_dashboard/internal/model"
	"math"
)

const defaultPageSize = 10

// pagination 上游分页信息，字段均可缺省
type pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type itemsEnvelope struct {
	Items      json.RawMessage `json:"items"`
	Pagination *pagination     `json:"pagination"`
}

func isArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// unwrapData 返回 body.data（对象时），否则返回 body 本身
func unwrapData(body []byte) []byte {
	if !isObject(body) {
		return body
	}
	var env dataEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if isObject(env.Data) {
		return env.Data
	}
	return body
}

// extractItems 依次尝试 data.items、data、body 本身
func extractItems(body []byte) ([]model.StudentRecord, pagination, error) {
	var pg pagination
	items := make([]model.StudentRecord, 0)

	if isArray(body) {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, pg, err
		}
		return items, pg, nil
	}
	if !isObject(body) {
		return nil, pg, ErrMalformedResponse
	}

	var env dataEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, pg, err
	}

	switch {
	case isArray(env.Data):
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, pg, err
		}
	case isObject(env.Data):
		var inner itemsEnvelope
		if err := json.Unmarshal(env.Data, &inner); err != nil {
			return nil, pg, err
		}
		if inner.Pagination != nil {
			pg = *inner.Pagination
		}
		if isArray(inner.Items) {
			if err := json.Unmarshal(inner.Items, &items); err != nil {
				return nil, pg, err
			}
		}
	}

	return items, pg, nil
}

// normalizePage 将各种响应外壳转成固定的分页结构，缺失的分页字段按请求参数补齐
func normalizePage(body []byte, reqPage, reqPageSize int) (*model.PaginatedResponse, error) {
	items, pg, err := extractItems(body)
	if err != nil {
		return nil, err
	}

	total := firstPositive(pg.Total, len(items))
	page := firstPositive(pg.Page, reqPage, 1)
	pageSize := firstPositive(pg.Limit, reqPageSize, defaultPageSize)
	totalPages := firstPositive(pg.TotalPages, TotalPages(total, pageSize))

	return &model.PaginatedResponse{
		Data:       items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// TotalPages ceil(total / pageSize)
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
