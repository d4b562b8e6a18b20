package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hecos/internal/controller"
	"hecos/internal/render"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	controller.Snapshot
	ClockText  string `json:"clockText"`  // 顶栏时钟文本
	SheetCount int    `json:"sheetCount"` // 目录中的数据表数量
}

func (h *Handler) status(snap controller.Snapshot) StatusResponse {
	return StatusResponse{
		Snapshot:   snap,
		ClockText:  render.FormatClock(snap.Clock),
		SheetCount: len(h.ctrl.Sources()),
	}
}

// GetStatus 获取当前选中数据表的状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status(h.ctrl.Snapshot()))
}
