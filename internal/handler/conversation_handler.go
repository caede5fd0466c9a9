package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ui-guide-go/internal/model"
	"ui-guide-go/internal/service"
	"ui-guide-go/pkg/log"
)

// ConversationHandler 处理与对话相关的 API 请求。
type ConversationHandler struct {
	conversations service.ConversationService
	chat          service.ChatService
	exports       service.ExportService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(conversations service.ConversationService, chat service.ChatService, exports service.ExportService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, chat: chat, exports: exports}
}

// ConversationList 是对话列表的响应体。
type ConversationList struct {
	Conversations []model.Conversation `json:"conversations"`
	ActiveID      string               `json:"activeId"`
}

// RenameRequest 定义了重命名请求体。
type RenameRequest struct {
	Title string `json:"title" binding:"required"`
}

// SendMessageRequest 定义了发送聊天消息的请求体。
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// List 返回全部对话，最新的在前。
func (h *ConversationHandler) List(c *gin.Context) {
	convs, active := h.conversations.List()
	success(c, ConversationList{Conversations: convs, ActiveID: active})
}

// Create 新建一个对话。
func (h *ConversationHandler) Create(c *gin.Context) {
	success(c, h.conversations.Create(c.Request.Context()))
}

// Get 返回单个对话。
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.conversations.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, conv)
}

// Activate 选择当前对话。
func (h *ConversationHandler) Activate(c *gin.Context) {
	if err := h.conversations.SetActive(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	success(c, gin.H{"activeId": c.Param("id")})
}

// Rename 修改对话标题。
func (h *ConversationHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Rename: invalid request payload: %v", err)
		fail(c, http.StatusBadRequest, "title is required", nil)
		return
	}
	conv, err := h.conversations.Rename(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, conv)
}

// Delete 删除对话，返回新的当前对话 ID。
func (h *ConversationHandler) Delete(c *gin.Context) {
	active, err := h.conversations.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, gin.H{"activeId": active})
}

// SendMessage 发送一条聊天消息并等待回答。
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("SendMessage: invalid request payload: %v", err)
		fail(c, http.StatusBadRequest, "content is required", nil)
		return
	}
	res, err := h.chat.Send(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, res)
}

// CancelMessage 取消对话中尚未完成的请求。
func (h *ConversationHandler) CancelMessage(c *gin.Context) {
	success(c, gin.H{"canceled": h.chat.Cancel(c.Param("id"))})
}

// Export 导出对话记录。
func (h *ConversationHandler) Export(c *gin.Context) {
	opts, ok := bindExportOptions(c)
	if !ok {
		return
	}
	res, err := h.exports.ExportConversation(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		writeError(c, err)
		return
	}
	writeExport(c, res)
}
