// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"github.com/haierkeys/snapshot-share-service/internal/app"
	"github.com/haierkeys/snapshot-share-service/pkg/code"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// asCode maps a service error to a response code.
// Services return *code.Code; anything else is an internal fault.
// asCode 将服务层错误映射为响应码,非 *code.Code 一律视为内部错误
func asCode(err error) *code.Code {
	if c, ok := err.(*code.Code); ok {
		return c
	}
	return code.ErrorServerInternal.WithDetails(err.Error())
}
