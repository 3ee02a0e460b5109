package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskguard/api/transport"
	"github.com/fastygo/taskguard/pkg/httpcontext"
	auditUC "github.com/fastygo/taskguard/usecase/auditlog"
)

type AuditHandler struct {
	baseHandler
	uc *auditUC.UseCase
}

func NewAuditHandler(uc *auditUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Recent audit events, newest first
// @Tags audit
// @Router /api/v1/audit-log [get]
func (h *AuditHandler) GetAuditLog(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.uc.List(stdCtx, actor)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewList(events))
}
