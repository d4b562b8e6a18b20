package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hecos/internal/controller"
	"hecos/internal/model"
	"hecos/internal/render"
)

type sheetItem struct {
	Index   int              `json:"index"`
	Label   string           `json:"label"`
	Kind    model.SheetKind  `json:"kind"`
	State   model.FetchState `json:"state"`
	HasData bool             `json:"hasData"`
	Rows    int              `json:"rows"`
	Error   string           `json:"error,omitempty"`
	Active  bool             `json:"active"`
}

type listSheetsResponse struct {
	Active int         `json:"active"`
	Items  []sheetItem `json:"items"`
}

// ListSheets 数据表目录及各自状态
// GET /api/sheets
func (h *Handler) ListSheets(c *gin.Context) {
	snap := h.ctrl.Snapshot()
	sources := h.ctrl.Sources()

	items := make([]sheetItem, 0, len(sources))
	for i := range sources {
		v, err := h.ctrl.View(i)
		if err != nil {
			continue
		}
		items = append(items, sheetItem{
			Index:   i,
			Label:   v.Source.Label,
			Kind:    v.Source.Kind,
			State:   v.State,
			HasData: v.HasData,
			Rows:    v.Rows,
			Error:   v.Error,
			Active:  i == snap.Index,
		})
	}

	c.JSON(http.StatusOK, listSheetsResponse{Active: snap.Index, Items: items})
}

type selectSheetRequest struct {
	Index *int `json:"index"`
}

// SelectSheet 切换当前数据表
// POST /api/sheets/select
func (h *Handler) SelectSheet(c *gin.Context) {
	var req selectSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.ctrl.Select(*req.Index); err != nil {
		h.writeControllerError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status(h.ctrl.Snapshot()))
}

// RefreshSheet 重新拉取指定数据表
// POST /api/sheets/:index/refresh
func (h *Handler) RefreshSheet(c *gin.Context) {
	v, ok := h.viewParam(c)
	if !ok {
		return
	}
	if err := h.ctrl.Refresh(v.Index); err != nil {
		h.writeControllerError(c, err)
		return
	}
	v, _ = h.ctrl.View(v.Index)
	c.JSON(http.StatusAccepted, v)
}

type summaryResponse struct {
	controller.SheetView
	Summary *model.Summary `json:"summary,omitempty"`
}

// GetSummary 推导指定数据表的卡片与图表数据
// GET /api/sheets/:index/summary
func (h *Handler) GetSummary(c *gin.Context) {
	v, ok := h.viewParam(c)
	if !ok {
		return
	}
	resp := summaryResponse{SheetView: v}
	if v.HasData {
		s := h.summaryOf(v)
		resp.Summary = &s
	}
	c.JSON(http.StatusOK, resp)
}

// GetChart 以 SVG 输出指定图表
// GET /api/sheets/:index/charts/:chart
func (h *Handler) GetChart(c *gin.Context) {
	v, ok := h.viewParam(c)
	if !ok {
		return
	}
	if !v.HasData {
		c.JSON(http.StatusNotFound, gin.H{"error": "sheet has no data yet"})
		return
	}

	ch, found := h.summaryOf(v).FindChart(c.Param("chart"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
		return
	}

	var buf bytes.Buffer
	err := render.ChartSVG(ch, &buf)
	if errors.Is(err, render.ErrNoValues) {
		buf.Reset()
		err = render.EmptyChartSVG(ch.Title, &buf)
	}
	if err != nil {
		h.logger.Error("render chart failed",
			zap.Int("index", v.Index),
			zap.String("chart", ch.ID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render chart failed"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}
