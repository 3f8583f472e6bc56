package handler

import (
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/gin-gonic/gin"
)

// ResponseHandler 阶段响应（regular / marketing）
type ResponseHandler struct {
	svc *service.ResponseService
	approver func(*gin.Context) bool
}

func NewResponseHandler(svc *service.ResponseService, approver func(*gin.Context) bool) *ResponseHandler {
	return &ResponseHandler{svc: svc, approver: approver}
}

// Open POST /response-tracks
func (h *ResponseHandler) Open(c *gin.Context) {
	var req service.OpenTrackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !req.Track.Valid() {
		BadRequest(c, "track must be regular or marketing")
		return
	}
	t, err := h.svc.Open(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, t)
}

// ListByOrder GET /orders/:id/response-tracks
func (h *ResponseHandler) ListByOrder(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	tracks, err := h.svc.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": tracks})
}

// RespondBody 记录响应
type RespondBody struct {
	Stage string       `json:"stage" binding:"required"`
	Track entity.Track `json:"track"`
}

// Respond POST /orders/:id/responses
func (h *ResponseHandler) Respond(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RespondBody
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Track == "" {
		req.Track = entity.TrackRegular
	}
	if !req.Track.Valid() {
		BadRequest(c, "track must be regular or marketing")
		return
	}
	t, err := h.svc.Respond(c.Request.Context(), orderID, req.Stage, req.Track, GetUserID(c), h.approver(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, t)
}

// Extend POST /response-tracks/:id/extend
func (h *ResponseHandler) Extend(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.ExtendInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Extend(c.Request.Context(), id, req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, t)
}

// ExtendLogs GET /response-tracks/:id/extend-logs
func (h *ResponseHandler) ExtendLogs(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	logs, err := h.svc.ExtendLogs(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": logs})
}
