package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-guide-go/internal/model"
	"ui-guide-go/internal/service"
)

// PreferenceHandler 处理用户偏好的读写。
type PreferenceHandler struct {
	preferences service.PreferenceService
}

// NewPreferenceHandler 创建一个新的 PreferenceHandler。
func NewPreferenceHandler(preferences service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences}
}

// Get 返回当前偏好。
func (h *PreferenceHandler) Get(c *gin.Context) {
	success(c, h.preferences.Get())
}

// Update 设置默认的详细程度。
func (h *PreferenceHandler) Update(c *gin.Context) {
	var req model.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid preferences payload", nil)
		return
	}
	prefs, err := h.preferences.SetVerbosity(c.Request.Context(), req.Verbosity)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, prefs)
}
