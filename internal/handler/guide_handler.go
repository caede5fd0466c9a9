package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-guide-go/internal/model"
	"ui-guide-go/internal/service"
	"ui-guide-go/pkg/log"
	"ui-guide-go/pkg/tasks"
)

// GuideHandler 处理引导生成与指南历史的请求。
type GuideHandler struct {
	guides   service.GuideService
	guidance service.GuidanceService
	exports  service.ExportService
}

// NewGuideHandler 创建一个新的 GuideHandler。
func NewGuideHandler(guides service.GuideService, guidance service.GuidanceService, exports service.ExportService) *GuideHandler {
	return &GuideHandler{guides: guides, guidance: guidance, exports: exports}
}

// GenerateRequest 是引导表单的请求体，字段长度由 service 层校验。
type GenerateRequest struct {
	Context       string `json:"context" binding:"required"`
	Task          string `json:"task" binding:"required"`
	UIDescription string `json:"uiDescription"`
	Constraints   string `json:"constraints"`
	Verbosity     string `json:"verbosity"`
}

// FeedbackRequest 是步骤反馈的请求体。
type FeedbackRequest struct {
	Step   int    `json:"step" binding:"required,min=1"`
	Vote   string `json:"vote" binding:"omitempty,oneof=up down"`
	Report string `json:"report"`
}

// List 返回保存的指南，最新的在前。
func (h *GuideHandler) List(c *gin.Context) {
	success(c, h.guides.List())
}

// Generate 提交引导表单并保存生成的指南。
func (h *GuideHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Generate: invalid request payload: %v", err)
		fail(c, http.StatusBadRequest, "context and task are required", nil)
		return
	}
	guide, err := h.guidance.Generate(c.Request.Context(), model.GuideInput{
		Context:       req.Context,
		Task:          req.Task,
		UIDescription: req.UIDescription,
		Constraints:   req.Constraints,
		Verbosity:     model.Verbosity(req.Verbosity),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, guide)
}

// CancelPending 取消尚未完成的引导生成请求。
func (h *GuideHandler) CancelPending(c *gin.Context) {
	success(c, gin.H{"canceled": h.guidance.Cancel()})
}

// Get 返回单个指南。
func (h *GuideHandler) Get(c *gin.Context) {
	g, err := h.guides.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, g)
}

// Rename 修改指南标题。
func (h *GuideHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "title is required", nil)
		return
	}
	g, err := h.guides.Rename(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, g)
}

// Delete 删除指南。
func (h *GuideHandler) Delete(c *gin.Context) {
	if err := h.guides.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	success(c, nil)
}

// Export 导出指南。
func (h *GuideHandler) Export(c *gin.Context) {
	opts, ok := bindExportOptions(c)
	if !ok {
		return
	}
	res, err := h.exports.ExportGuide(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	writeExport(c, res)
}

// Feedback 提交步骤反馈。
func (h *GuideHandler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Feedback: invalid request payload: %v", err)
		fail(c, http.StatusBadRequest, "step and a vote of up or down are required", nil)
		return
	}
	err := h.guidance.SubmitFeedback(c.Request.Context(), c.Param("id"), service.StepFeedback{
		Step:   req.Step,
		Vote:   tasks.Vote(req.Vote),
		Report: req.Report,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, nil)
}
