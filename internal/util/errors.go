package util

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrInvalidSortField   = errors.New("invalid sort field")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidField       = errors.New("invalid field")
	ErrInvalidAggregate   = errors.New("invalid aggregate function")
	ErrDeleteFailed       = errors.New("failed to delete student")
	ErrEmptySpreadsheet   = errors.New("spreadsheet has no data rows")
	ErrMissingColumns     = errors.New("spreadsheet is missing required columns")
	ErrStorageUnavailable = errors.New("storage provider unavailable")
)
