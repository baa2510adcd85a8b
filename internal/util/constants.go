package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	RoleDashboard = "dashboard"
	RoleGateway   = "gateway"
)

const (
	MimeZip         = "application/zip"
	MimeOctetStream = "application/octet-stream"
	MimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AllowedSpreadsheetTypes xlsx 在内容嗅探时表现为 zip
var AllowedSpreadsheetTypes = []string{MimeZip, MimeOctetStream}
