package handler

import (
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler 生产计划（workplan）
type ScheduleHandler struct {
	svc    *service.ScheduleService
	export *service.ExportService
}

func NewScheduleHandler(svc *service.ScheduleService, export *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, export: export}
}

// GetPlan GET /work-items/:id/workplan
func (h *ScheduleHandler) GetPlan(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetPlan(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// Gate GET /orders/:id/timeline/gate
func (h *ScheduleHandler) Gate(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	gate, err := h.svc.Gate(c.Request.Context(), orderID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gate)
}

// ListPlans GET /orders/:id/workplans
func (h *ScheduleHandler) ListPlans(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	plans, err := h.svc.Plans(c.Request.Context(), orderID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": plans})
}

// SubmitOrderTimeline PUT /orders/:id/timeline
func (h *ScheduleHandler) SubmitOrderTimeline(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.OrderTimelineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	gate, err := h.svc.SubmitOrderTimeline(c.Request.Context(), orderID, req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gate)
}

// SetWindow PUT /work-items/:id/workplan/window
func (h *ScheduleHandler) SetWindow(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.WindowInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.SetWindow(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// SetStageDate PUT /work-items/:id/workplan/products/:productId/stages/:urutan/date
func (h *ScheduleHandler) SetStageDate(c *gin.Context) {
	id, productID, urutan, ok := stageParams(c)
	if !ok {
		return
	}
	var req service.StageDateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.SetStageDate(c.Request.Context(), id, productID, urutan, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// UpdateStage PUT /work-items/:id/workplan/products/:productId/stages/:urutan
func (h *ScheduleHandler) UpdateStage(c *gin.Context) {
	id, productID, urutan, ok := stageParams(c)
	if !ok {
		return
	}
	var req service.StageTextInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.UpdateStageText(c.Request.Context(), id, productID, urutan, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// AddStage POST /work-items/:id/workplan/products/:productId/stages
func (h *ScheduleHandler) AddStage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	view, err := h.svc.AddStage(c.Request.Context(), id, productID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, view)
}

// RemoveStage DELETE /work-items/:id/workplan/products/:productId/stages/:urutan
func (h *ScheduleHandler) RemoveStage(c *gin.Context) {
	id, productID, urutan, ok := stageParams(c)
	if !ok {
		return
	}
	view, err := h.svc.RemoveStage(c.Request.Context(), id, productID, urutan)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, view)
}

// ApplyRoomTimeline POST /work-items/:id/workplan/room-timeline
func (h *ScheduleHandler) ApplyRoomTimeline(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.RoomTimelineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	view, updated, err := h.svc.ApplyRoomTimeline(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"workplan": view, "updated": updated})
}

// StageStatusRequest 阶段进度
type StageStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStageStatus PUT /products/:productId/stages/:urutan/status
func (h *ScheduleHandler) UpdateStageStatus(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	urutan, ok := paramInt(c, "urutan")
	if !ok {
		return
	}
	var req StageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.svc.UpdateStageStatus(c.Request.Context(), productID, urutan, req.Status); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Progress GET /orders/:id/progress
func (h *ScheduleHandler) Progress(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	snap, err := h.svc.Progress(c.Request.Context(), orderID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, snap)
}

// Export GET /workplans/export
func (h *ScheduleHandler) Export(c *gin.Context) {
	f, filename, err := h.export.ExportWorkplans(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func stageParams(c *gin.Context) (uint64, uint64, int, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return 0, 0, 0, false
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return 0, 0, 0, false
	}
	urutan, ok := paramInt(c, "urutan")
	if !ok {
		return 0, 0, 0, false
	}
	return id, productID, urutan, true
}
