package handler

import (
	"strconv"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/gin-gonic/gin"
)

// CatalogHandler 目录（只读）
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListJenisItems GET /catalog/jenis-items
func (h *CatalogHandler) ListJenisItems(c *gin.Context) {
	items, err := h.svc.JenisItems(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// ListItems GET /catalog/items?jenis_item_id=
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var jenisItemID uint64
	if q := c.Query("jenis_item_id"); q != "" {
		v, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			BadRequest(c, "invalid jenis_item_id")
			return
		}
		jenisItemID = v
	}
	items, err := h.svc.Items(c.Request.Context(), jenisItemID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// ListProduks GET /catalog/produks
func (h *CatalogHandler) ListProduks(c *gin.Context) {
	produks, err := h.svc.Produks(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": produks})
}
