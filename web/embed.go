package web

import (
	"embed"
	"html/template"
	"strconv"
)

//go:embed templates/*.tmpl
var files embed.FS

var funcs = template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"derefID": func(id *int64) int64 {
		if id == nil {
			return 0
		}
		return *id
	},
	"sub": func(a, b int) int { return a - b },
	"add": func(a, b int) int { return a + b },
}

// Templates 解析内嵌的页面模板
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.tmpl")
}
