package ingest

import "errors"

var (
	// ErrFetch 网络请求失败或返回非 2xx 状态
	ErrFetch = errors.New("fetch failed")
	// ErrParse 响应内容无法解析为表格
	ErrParse = errors.New("parse failed")
)
