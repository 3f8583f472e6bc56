package handler

import (
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

// PermExportWorkplan guards the spreadsheet export.
const PermExportWorkplan = "workplan:export"

// RegisterRoutes 注册生产模块路由，rg 需已挂载 JWTAuth
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/sse/events", h.SSE.Stream)

	catalog := rg.Group("/catalog")
	{
		catalog.GET("/jenis-items", h.Catalog.ListJenisItems)
		catalog.GET("/items", h.Catalog.ListItems)
		catalog.GET("/produks", h.Catalog.ListProduks)
	}

	orders := rg.Group("/orders/:id")
	{
		orders.POST("/work-items", h.WorkItem.Respond)
		orders.GET("/work-items", h.WorkItem.ListByOrder)
		orders.GET("/workplans", h.Schedule.ListPlans)
		orders.PUT("/timeline", h.Schedule.SubmitOrderTimeline)
		orders.GET("/timeline/gate", h.Schedule.Gate)
		orders.GET("/progress", h.Schedule.Progress)
		orders.GET("/extension-requests", h.Extension.ListByOrder)
		orders.GET("/response-tracks", h.Response.ListByOrder)
		orders.POST("/responses", h.Response.Respond)
	}

	items := rg.Group("/work-items/:id")
	{
		items.GET("", h.WorkItem.Get)
		items.PUT("", h.WorkItem.Save)
		items.GET("/rooms", h.WorkItem.Rooms)
		items.POST("/rooms/rename", h.WorkItem.RenameRoom)

		items.POST("/products", h.WorkItem.CreateProduct)
		items.PUT("/products/:productId", h.WorkItem.UpdateProduct)
		items.DELETE("/products/:productId", h.WorkItem.RemoveProduct)
		items.POST("/products/:productId/bahan-baku", h.WorkItem.SelectBahanBaku)
		items.POST("/products/:productId/categories", h.WorkItem.AddCategory)
		items.DELETE("/products/:productId/categories/:categoryId", h.WorkItem.RemoveCategory)
		items.POST("/products/:productId/categories/:categoryId/lines", h.WorkItem.AddMaterialLine)
		items.PUT("/products/:productId/categories/:categoryId/lines/:lineId", h.WorkItem.UpdateMaterialLine)
		items.DELETE("/products/:productId/categories/:categoryId/lines/:lineId", h.WorkItem.RemoveMaterialLine)

		items.GET("/workplan", h.Schedule.GetPlan)
		items.PUT("/workplan/window", h.Schedule.SetWindow)
		items.POST("/workplan/room-timeline", h.Schedule.ApplyRoomTimeline)
		items.POST("/workplan/products/:productId/stages", h.Schedule.AddStage)
		items.PUT("/workplan/products/:productId/stages/:urutan", h.Schedule.UpdateStage)
		items.DELETE("/workplan/products/:productId/stages/:urutan", h.Schedule.RemoveStage)
		items.PUT("/workplan/products/:productId/stages/:urutan/date", h.Schedule.SetStageDate)

		items.POST("/extension-requests", h.Extension.Request)
	}

	products := rg.Group("/products/:productId")
	{
		products.PUT("/stages/:urutan/status", h.Schedule.UpdateStageStatus)
		products.POST("/evidence", h.Evidence.Upload)
		products.GET("/evidence", h.Evidence.List)
	}

	rg.POST("/extension-requests/:id/resolve", h.Extension.Resolve)

	tracks := rg.Group("/response-tracks")
	{
		tracks.POST("", h.Response.Open)
		tracks.POST("/:id/extend", h.Response.Extend)
		tracks.GET("/:id/extend-logs", h.Response.ExtendLogs)
	}

	rg.GET("/workplans/export", middleware.RequirePermission(PermExportWorkplan), h.Schedule.Export)
}
