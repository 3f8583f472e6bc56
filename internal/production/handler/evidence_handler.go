package handler

import (
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/gin-gonic/gin"
)

// EvidenceHandler 阶段凭证上传
type EvidenceHandler struct {
	svc *service.EvidenceService
}

func NewEvidenceHandler(svc *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{svc: svc}
}

// Upload POST /products/:productId/evidence (multipart: file, stage, notes)
func (h *EvidenceHandler) Upload(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required")
		return
	}
	src, err := fh.Open()
	if err != nil {
		InternalError(c, "open upload: "+err.Error())
		return
	}
	defer src.Close()

	ev, err := h.svc.Upload(c.Request.Context(), productID, service.EvidenceUpload{
		StageName:   c.PostForm("stage"),
		FileName:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Notes:       c.PostForm("notes"),
		Body:        src,
	}, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, ev)
}

// List GET /products/:productId/evidence
func (h *EvidenceHandler) List(c *gin.Context) {
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}
	items, err := h.svc.List(c.Request.Context(), productID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
