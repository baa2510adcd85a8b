package util

import (
	"strconv"
)

// ParseID 解析路径中的记录 id，失败返回 false
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
