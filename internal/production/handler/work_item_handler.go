package handler

import (
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/hierarchy"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/gin-gonic/gin"
)

// WorkItemHandler 工作项（房间/产品/分类/材料行）
type WorkItemHandler struct {
	svc *service.WorkItemService
}

func NewWorkItemHandler(svc *service.WorkItemService) *WorkItemHandler {
	return &WorkItemHandler{svc: svc}
}

// RespondRequest 响应订单，创建工作项
type RespondRequest struct {
	DesignApprovalID uint64 `json:"design_approval_id" binding:"required"`
}

// Respond POST /orders/:id/work-items
func (h *WorkItemHandler) Respond(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	item, err := h.svc.Respond(c.Request.Context(), orderID, req.DesignApprovalID, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// ListByOrder GET /orders/:id/work-items
func (h *WorkItemHandler) ListByOrder(c *gin.Context) {
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

// Get GET /work-items/:id
func (h *WorkItemHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, doc)
}

// Save PUT /work-items/:id
func (h *WorkItemHandler) Save(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.SaveInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !req.Mode.Valid() {
		BadRequest(c, "mode must be draft or publish")
		return
	}
	res, err := h.svc.Save(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// Rooms GET /work-items/:id/rooms
func (h *WorkItemHandler) Rooms(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rooms, err := h.svc.Rooms(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": rooms})
}

// RenameRoomRequest 房间重命名
type RenameRoomRequest struct {
	Version int              `json:"version"`
	Room    hierarchy.RoomID `json:"room_id"`
	Label   string           `json:"label"`
}

// RenameRoom POST /work-items/:id/rooms/rename
func (h *WorkItemHandler) RenameRoom(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RenameRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.RenameRoom(c.Request.Context(), id, req.Room, req.Label, req.Version)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// CreateProduct POST /work-items/:id/products
func (h *WorkItemHandler) CreateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.CreateProduct(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, res)
}

// UpdateProduct PUT /work-items/:id/products/:productId
func (h *WorkItemHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.UpdateProduct(c.Request.Context(), id, productID, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// RemoveProduct DELETE /work-items/:id/products/:productId
func (h *WorkItemHandler) RemoveProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	res, err := h.svc.RemoveProduct(c.Request.Context(), id, productID, queryVersion(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// AddCategoryRequest 添加分类
type AddCategoryRequest struct {
	Version     int    `json:"version"`
	JenisItemID uint64 `json:"jenis_item_id" binding:"required"`
}

// AddCategory POST /work-items/:id/products/:productId/categories
func (h *WorkItemHandler) AddCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	var req AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.AddCategory(c.Request.Context(), id, productID, req.JenisItemID, req.Version)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, res)
}

// RemoveCategory DELETE /work-items/:id/products/:productId/categories/:categoryId
func (h *WorkItemHandler) RemoveCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	categoryID, ok := paramRowID(c, "categoryId")
	if !ok {
		return
	}
	res, err := h.svc.RemoveCategory(c.Request.Context(), id, productID, categoryID, queryVersion(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// AddMaterialLine POST /work-items/:id/products/:productId/categories/:categoryId/lines
func (h *WorkItemHandler) AddMaterialLine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	categoryID, ok := paramRowID(c, "categoryId")
	if !ok {
		return
	}
	var req service.MaterialLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.AddMaterialLine(c.Request.Context(), id, productID, categoryID, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, res)
}

// UpdateMaterialLine PUT /work-items/:id/products/:productId/categories/:categoryId/lines/:lineId
func (h *WorkItemHandler) UpdateMaterialLine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	categoryID, ok := paramRowID(c, "categoryId")
	if !ok {
		return
	}
	lineID, ok := paramRowID(c, "lineId")
	if !ok {
		return
	}
	var req service.MaterialLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.UpdateMaterialLine(c.Request.Context(), id, productID, categoryID, lineID, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// RemoveMaterialLine DELETE /work-items/:id/products/:productId/categories/:categoryId/lines/:lineId
func (h *WorkItemHandler) RemoveMaterialLine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	categoryID, ok := paramRowID(c, "categoryId")
	if !ok {
		return
	}
	lineID, ok := paramRowID(c, "lineId")
	if !ok {
		return
	}
	res, err := h.svc.RemoveMaterialLine(c.Request.Context(), id, productID, categoryID, lineID, queryVersion(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}

// SelectBahanBaku POST /work-items/:id/products/:productId/bahan-baku
func (h *WorkItemHandler) SelectBahanBaku(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramRowID(c, "productId")
	if !ok {
		return
	}
	var req service.BahanBakuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.SelectBahanBaku(c.Request.Context(), id, productID, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, res)
}
