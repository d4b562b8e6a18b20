package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hecos/internal/model"
	"hecos/internal/render"
)

// Page 看板页面；?sheet=i 会先切换到该数据表
// GET /
func (h *Handler) Page(c *gin.Context) {
	if raw := c.Query("sheet"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			c.String(http.StatusBadRequest, "invalid sheet index")
			return
		}
		if err := h.ctrl.Select(idx); err != nil {
			h.writeControllerError(c, err)
			return
		}
	}

	snap := h.ctrl.Snapshot()
	summary := model.Summary{}
	if snap.HasData {
		summary = h.summaryOf(snap.SheetView)
	}

	data := render.NewPageData(h.ctrl.Sources(), snap.Index, snap.State, snap.Error, snap.RequestID, snap.Clock, summary)

	var buf bytes.Buffer
	if err := render.Page(&buf, data); err != nil {
		h.logger.Error("render page failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "render page failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
