package api_router

import (
	"context"

	"github.com/haierkeys/snapshot-share-service/internal/app"
	"github.com/haierkeys/snapshot-share-service/internal/dto"
	"github.com/haierkeys/snapshot-share-service/internal/middleware"
	pkgapp "github.com/haierkeys/snapshot-share-service/pkg/app"
	"github.com/haierkeys/snapshot-share-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResolveHandler public resolution API router handler
// No authentication: anyone holding a share id may resolve it.
// ResolveHandler 公开解析 API 路由处理器,无需认证,持有 ID 即可解析
type ResolveHandler struct {
	*Handler
}

// NewResolveHandler creates ResolveHandler instance
// NewResolveHandler 创建 ResolveHandler 实例
func NewResolveHandler(a *app.App) *ResolveHandler {
	return &ResolveHandler{
		Handler: NewHandler(a),
	}
}

// Resolve resolves a public share id to its snapshot
// Missing, revoked and expired ids are indistinguishable to the caller.
// @Summary Resolve a public share
// @Description Return the published snapshot for a share id
// @Tags Public
// @Produce json
// @Param id path string true "Share ID"
// @Success 200 {object} pkgapp.Res{data=dto.ShareResolveResponse} "Success"
// @Router /api/s/{id} [get]
func (h *ResolveHandler) Resolve(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := c.Param("id")
	if id == "" {
		response.ToResponse(code.ErrorShareNotFound)
		return
	}

	ctx := c.Request.Context()

	share, err := h.App.ShareService.Resolve(ctx, id)
	if err != nil {
		h.logError(ctx, "ResolveHandler.Resolve", err)
		response.ToResponse(asCode(err))
		return
	}

	response.ToResponse(code.Success.WithData(share))
}

// TrackView records a successful public resolution
// Always success-shaped: losing a view must never surface to the viewer.
// @Summary Track a share view
// @Description Record a view against a share id, best-effort
// @Tags Public
// @Produce json
// @Param id path string true "Share ID"
// @Success 200 {object} pkgapp.Res{data=dto.ShareTrackViewResponse} "Success"
// @Router /api/s/{id}/view [post]
func (h *ResolveHandler) TrackView(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := c.Param("id")

	// 计数写入走后台任务，不阻塞响应；客户端断开也不影响写入。
	// 池满时本次计数直接丢弃，统计本身允许有损
	trackCtx := context.WithoutCancel(c.Request.Context())
	_ = h.App.SubmitAsyncTask(trackCtx, func(ctx context.Context) error {
		h.App.ShareService.TrackView(ctx, id)
		return nil
	})

	response.ToResponse(code.Success.WithData(&dto.ShareTrackViewResponse{OK: true}))
}

// logError 记录错误日志，包含 Trace ID
func (h *ResolveHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
