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

// ShareHandler owner-facing share API router handler
// ShareHandler 分享管理 API 路由处理器
// Uses App Container to inject dependencies
// 使用 App Container 注入依赖
type ShareHandler struct {
	*Handler
}

// NewShareHandler creates ShareHandler instance
// NewShareHandler 创建 ShareHandler 实例
func NewShareHandler(a *app.App) *ShareHandler {
	return &ShareHandler{
		Handler: NewHandler(a),
	}
}

// Publish stores an immutable snapshot and returns its public id
// @Summary Publish a snapshot share
// @Description Store a quote, timeline or combined snapshot and expose it under a short public id
// @Tags Share
// @Security OwnerAuthToken
// @Param token header string true "Auth Token"
// @Accept json
// @Produce json
// @Param params body dto.SharePublishRequest true "Snapshot payload"
// @Success 200 {object} pkgapp.Res{data=dto.SharePublishResponse} "Success"
// @Router /api/shares [post]
func (h *ShareHandler) Publish(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SharePublishRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ShareHandler.Publish.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := pkgapp.GetOwnerID(c)
	if ownerID == "" {
		h.App.Logger().Error("ShareHandler.Publish err ownerID empty")
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	share, err := h.App.ShareService.Publish(ctx, ownerID, params)
	if err != nil {
		h.logError(ctx, "ShareHandler.Publish", err)
		response.ToResponse(asCode(err))
		return
	}

	response.ToResponse(code.Success.WithData(share))
}

// List returns the owner's shares, re-verified against the global id map
// @Summary List own shares
// @Description Return the owner's shares with live status, dropping entries that no longer resolve
// @Tags Share
// @Security OwnerAuthToken
// @Param token header string true "Auth Token"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]dto.ShareRecordResponse} "Success"
// @Router /api/shares [get]
func (h *ShareHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ownerID := pkgapp.GetOwnerID(c)
	if ownerID == "" {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	shares, err := h.App.ShareService.List(ctx, ownerID)
	if err != nil {
		h.logError(ctx, "ShareHandler.List", err)
		response.ToResponse(asCode(err))
		return
	}

	// 校验后的结果在响应侧分页，索引本身从不按页存储
	total := len(shares)
	offset := pkgapp.GetPageOffset(pkgapp.GetPage(c), pkgapp.GetPageSize(c))
	if offset > total {
		offset = total
	}
	end := offset + pkgapp.GetPageSize(c)
	if end > total {
		end = total
	}

	response.ToResponseList(code.Success, shares[offset:end], total)
}

// Revoke hides a share from public resolution
// @Summary Revoke a share
// @Description Revoke one of the owner's shares; repeated revokes succeed
// @Tags Share
// @Security OwnerAuthToken
// @Param token header string true "Auth Token"
// @Produce json
// @Param id path string true "Share ID"
// @Success 200 {object} pkgapp.Res{data=dto.ShareRevokeResponse} "Success"
// @Router /api/shares/{id} [delete]
func (h *ShareHandler) Revoke(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ownerID := pkgapp.GetOwnerID(c)
	if ownerID == "" {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	id := c.Param("id")
	if id == "" {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("id is required"))
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.ShareService.Revoke(ctx, ownerID, id)
	if err != nil {
		h.logError(ctx, "ShareHandler.Revoke", err)
		response.ToResponse(asCode(err))
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// Retouch updates the owner-facing title of a share
// @Summary Rename a share
// @Description Update the title shown in the owner's share list
// @Tags Share
// @Security OwnerAuthToken
// @Param token header string true "Auth Token"
// @Accept json
// @Produce json
// @Param id path string true "Share ID"
// @Param params body dto.ShareRetouchRequest true "Title"
// @Success 200 {object} pkgapp.Res{data=dto.ShareRecordResponse} "Success"
// @Router /api/shares/{id} [patch]
func (h *ShareHandler) Retouch(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ShareRetouchRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ShareHandler.Retouch.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ownerID := pkgapp.GetOwnerID(c)
	if ownerID == "" {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	id := c.Param("id")
	if id == "" {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("id is required"))
		return
	}

	ctx := c.Request.Context()

	record, err := h.App.ShareService.Retouch(ctx, ownerID, id, params)
	if err != nil {
		h.logError(ctx, "ShareHandler.Retouch", err)
		response.ToResponse(asCode(err))
		return
	}

	response.ToResponse(code.Success.WithData(record))
}

// Reconcile persists read-repair results back into the owner index
// @Summary Reconcile own share index
// @Description Re-check every indexed share against the global id map and persist the repaired index
// @Tags Share
// @Security OwnerAuthToken
// @Param token header string true "Auth Token"
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.ShareReconcileResponse} "Success"
// @Router /api/shares/reconcile [post]
func (h *ShareHandler) Reconcile(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ownerID := pkgapp.GetOwnerID(c)
	if ownerID == "" {
		response.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.ShareService.Reconcile(ctx, ownerID)
	if err != nil {
		h.logError(ctx, "ShareHandler.Reconcile", err)
		response.ToResponse(asCode(err))
		return
	}

	response.ToResponse(code.Success.WithData(result))
}

// logError 记录错误日志，包含 Trace ID
func (h *ShareHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
