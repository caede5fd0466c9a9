package repository

import (
	"context"

	"ui-guide-go/internal/model"
)

// 持久化键与原有前端保持一致，便于导入旧数据。
const (
	ConversationsKey = "ui-guide-chats"
	GuidesKey        = "ui-guide-guides"
	PreferencesKey   = "ui-guide-preferences"
)

// ConversationRepository 定义了对话集合的持久化接口。
type ConversationRepository interface {
	Load(ctx context.Context) []model.Conversation
	Save(ctx context.Context, conversations []model.Conversation)
}

type conversationRepository struct {
	store *Store
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(store *Store) ConversationRepository {
	return &conversationRepository{store: store}
}

// Load 读取全部对话，最新的在前。
func (r *conversationRepository) Load(ctx context.Context) []model.Conversation {
	return ReadList[model.Conversation](ctx, r.store, ConversationsKey)
}

// Save 整体覆盖对话集合。
func (r *conversationRepository) Save(ctx context.Context, conversations []model.Conversation) {
	r.store.Write(ctx, ConversationsKey, conversations)
}
