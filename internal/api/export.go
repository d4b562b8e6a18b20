package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hecos/internal/render"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// buildContentDisposition 同时给出 ASCII 文件名与 UTF-8 编码的原始名称
func buildContentDisposition(label string) string {
	ascii := render.ExportFilename(label)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", ascii, url.PathEscape("HECOS "+label+".xlsx"))
}

// ExportSheet 导出指定数据表（Summary + Data 两个工作表）
// GET /api/sheets/:index/export
func (h *Handler) ExportSheet(c *gin.Context) {
	v, ok := h.viewParam(c)
	if !ok {
		return
	}
	if !v.HasData {
		c.JSON(http.StatusConflict, gin.H{"error": "sheet has no data yet"})
		return
	}

	f, err := render.WorkbookXLSX(h.summaryOf(v), v.Data)
	if err != nil {
		h.logger.Error("build workbook failed", zap.Int("index", v.Index), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.logger.Error("write workbook failed", zap.Int("index", v.Index), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(v.Source.Label))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
