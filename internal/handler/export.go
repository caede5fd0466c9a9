package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-guide-go/internal/service"
)

type exportQuery struct {
	Format  string `form:"format"`
	Archive bool   `form:"archive"`
}

func bindExportOptions(c *gin.Context) (service.ExportOptions, bool) {
	var q exportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "invalid export query", nil)
		return service.ExportOptions{}, false
	}
	return service.ExportOptions{Format: service.ExportFormat(q.Format), Archive: q.Archive}, true
}

// writeExport 归档时返回下载链接，否则直接返回文件内容。
func writeExport(c *gin.Context, res service.ExportResult) {
	if res.URL != "" {
		success(c, res)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	c.Data(http.StatusOK, res.ContentType, []byte(res.Body))
}
