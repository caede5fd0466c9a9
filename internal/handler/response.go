// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-guide-go/internal/service"
	"ui-guide-go/pkg/assistant"
	"ui-guide-go/pkg/log"
)

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

func fail(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

// writeError 将业务错误映射为 HTTP 状态码与统一响应。
func writeError(c *gin.Context, err error) {
	var apiErr *assistant.Error
	switch {
	case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrGuideNotFound):
		fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidVerbosity),
		errors.Is(err, service.ErrInvalidGuideInput),
		errors.Is(err, service.ErrInvalidFeedback),
		errors.Is(err, service.ErrUnsupportedFormat):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrSuperseded):
		fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrArchiveDisabled):
		fail(c, http.StatusServiceUnavailable, err.Error(), nil)
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Kind == assistant.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		fail(c, status, service.UserFacingError(err), gin.H{
			"kind":     apiErr.Kind,
			"status":   apiErr.Status,
			"traceId":  apiErr.TraceID,
			"details":  apiErr.Details,
			"upstream": apiErr.Message,
		})
	default:
		log.Errorf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
