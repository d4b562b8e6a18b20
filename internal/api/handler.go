package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hecos/internal/controller"
	"hecos/internal/metrics"
	"hecos/internal/model"
)

// Handler 看板 API 处理器
type Handler struct {
	ctrl     *controller.Controller
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(ctrl *controller.Controller, registry *metrics.Registry, logger *zap.Logger) *Handler {
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ctrl:     ctrl,
		registry: registry,
		logger:   logger,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据表
	router.GET("/sheets", h.ListSheets)
	router.POST("/sheets/select", h.SelectSheet)
	router.POST("/sheets/:index/refresh", h.RefreshSheet)
	router.GET("/sheets/:index/summary", h.GetSummary)
	router.GET("/sheets/:index/charts/:chart", h.GetChart)

	// 导出
	router.GET("/sheets/:index/export", h.ExportSheet)

	// 状态推送（SSE）
	router.GET("/events", h.Events)
}

// summaryOf 为有数据的视图推导展示数据
func (h *Handler) summaryOf(v controller.SheetView) model.Summary {
	return h.registry.Derive(v.Index, v.Source, v.Data)
}

// viewParam 解析路径中的 :index；失败时已写出响应
func (h *Handler) viewParam(c *gin.Context) (controller.SheetView, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sheet index"})
		return controller.SheetView{}, false
	}
	v, err := h.ctrl.View(idx)
	if err != nil {
		h.writeControllerError(c, err)
		return controller.SheetView{}, false
	}
	return v, true
}

func (h *Handler) writeControllerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, controller.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, controller.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("controller error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
