package handler

import (
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/gin-gonic/gin"
)

// ExtensionHandler 时间线延期申请
type ExtensionHandler struct {
	svc *service.ExtensionService
	approver func(*gin.Context) bool
}

func NewExtensionHandler(svc *service.ExtensionService, approver func(*gin.Context) bool) *ExtensionHandler {
	return &ExtensionHandler{svc: svc, approver: approver}
}

// ExtensionRequestBody 申请延期
type ExtensionRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// Request POST /work-items/:id/extension-requests
func (h *ExtensionHandler) Request(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ExtensionRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	ext, err := h.svc.Request(c.Request.Context(), id, req.Reason, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ext)
}

// ResolveBody 审批延期
type ResolveBody struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// Resolve POST /extension-requests/:id/resolve
func (h *ExtensionHandler) Resolve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ResolveBody
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	ext, gate, err := h.svc.Resolve(c.Request.Context(), id, req.Status, GetUserID(c), h.approver(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"request": ext, "gate": gate})
}

// ListByOrder GET /orders/:id/extension-requests
func (h *ExtensionHandler) ListByOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
