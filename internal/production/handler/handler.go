package handler

import (
	"errors"
	"strconv"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/config"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/middleware"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/repository"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/service"
	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/sse"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Catalog   *CatalogHandler
	WorkItem  *WorkItemHandler
	Schedule  *ScheduleHandler
	Extension *ExtensionHandler
	Response  *ResponseHandler
	Evidence  *EvidenceHandler
	SSE       *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, cfg *config.Config, hub *sse.Hub) *Handlers {
	approver := approverCheck(cfg.Production.ApproverRole)
	return &Handlers{
		Catalog:   NewCatalogHandler(svc.Catalog),
		WorkItem:  NewWorkItemHandler(svc.WorkItem),
		Schedule:  NewScheduleHandler(svc.Schedule, svc.Export),
		Extension: NewExtensionHandler(svc.Extension, approver),
		Response:  NewResponseHandler(svc.Response, approver),
		Evidence:  NewEvidenceHandler(svc.Evidence),
		SSE:       NewSSEHandler(hub),
	}
}

// approverCheck resolves the marketing approver capability of a request.
func approverCheck(role string) func(*gin.Context) bool {
	return func(c *gin.Context) bool {
		return middleware.HasRole(c, role)
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应，HTTP 状态码 = code / 100
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// errorCodes maps error kinds to response codes. The first match wins.
var errorCodes = []struct {
	kind error
	code int
}{
	// validation
	{entity.ErrDuplicateCategory, 40001},
	{entity.ErrProtectedCategory, 40002},
	{entity.ErrInvalidQuantity, 40003},
	{entity.ErrInvalidDimension, 40004},
	{entity.ErrInvalidRange, 40005},
	{entity.ErrOutOfWindow, 40006},
	{entity.ErrMissingStageName, 40007},
	{entity.ErrIncompleteProduct, 40008},
	{entity.ErrInvalidStatus, 40009},
	{entity.ErrInvalidExtension, 40010},
	// authorization
	{entity.ErrNotApprover, 40301},
	{entity.ErrTimelineLocked, 42300},
	// not found
	{entity.ErrUnknownProduct, 40401},
	{entity.ErrUnknownStage, 40402},
	{entity.ErrUnknownCategory, 40403},
	{entity.ErrUnknownLine, 40404},
	{entity.ErrUnknownRoom, 40405},
	{repository.ErrNotFound, 40400},
	// conflicts
	{entity.ErrStaleVersion, 40901},
	{entity.ErrWorkItemExists, 40902},
	{entity.ErrAlreadyResponded, 40903},
	{entity.ErrAlreadyResolved, 40904},
	{entity.ErrExtensionPending, 40905},
	{entity.ErrNotPublished, 40906},
	{entity.ErrTrackExists, 40907},
	// infrastructure
	{service.ErrStorageUnavailable, 50300},
}

// errorDetail carries the identity of the offending row.
type errorDetail struct {
	Product  string `json:"product,omitempty"`
	Category string `json:"category,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Field    string `json:"field,omitempty"`
}

// HandleError answers with the code of err's kind.
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := 50000
	for _, e := range errorCodes {
		if errors.Is(err, e.kind) {
			code = e.code
			break
		}
	}
	var de *entity.DomainError
	if errors.As(err, &de) {
		ErrorWithData(c, code, err.Error(), errorDetail{
			Product:  de.Product,
			Category: de.Category,
			Stage:    de.Stage,
			Field:    de.Field,
		})
		return
	}
	Error(c, code, err.Error())
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// paramID parses a numeric path parameter. It answers 400 and returns
// false when the parameter is not a positive integer.
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// paramRowID parses a persisted or draft row id path parameter.
func paramRowID(c *gin.Context, name string) (entity.RowID, bool) {
	id, err := entity.ParseRowID(c.Param(name))
	if err != nil {
		BadRequest(c, err.Error())
		return entity.RowID{}, false
	}
	return id, true
}

func paramInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}

// queryVersion reads the optional ?version= of destructive requests.
func queryVersion(c *gin.Context) int {
	v, _ := strconv.Atoi(c.Query("version"))
	return v
}
