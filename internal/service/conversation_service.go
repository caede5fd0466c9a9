// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ui-guide-go/internal/model"
	"ui-guide-go/internal/repository"
)

// titleLength 是由首条用户消息生成标题时保留的字符数。
const titleLength = 40

var nowFunc = time.Now

// ConversationService 定义了对话业务逻辑的接口。
type ConversationService interface {
	List() (conversations []model.Conversation, activeID string)
	Get(id string) (model.Conversation, error)
	Create(ctx context.Context) model.Conversation
	SetActive(id string) error
	AppendMessage(ctx context.Context, id string, msg model.ChatMessage) (model.Conversation, error)
	Rename(ctx context.Context, id, title string) (model.Conversation, error)
	Delete(ctx context.Context, id string) (activeID string, err error)
}

type conversationService struct {
	mu            sync.Mutex
	repo          repository.ConversationRepository
	conversations []model.Conversation
	activeID      string
}

// NewConversationService 从存储加载对话。集合为空时立即创建一个新对话。
func NewConversationService(ctx context.Context, repo repository.ConversationRepository) ConversationService {
	s := &conversationService{repo: repo, conversations: repo.Load(ctx)}
	if len(s.conversations) == 0 {
		s.createLocked(ctx)
	} else {
		s.activeID = s.conversations[0].ID
	}
	return s
}

// List 返回集合快照，最新的在前。
func (s *conversationService) List() ([]model.Conversation, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = cloneConversation(c)
	}
	return out, s.activeID
}

func (s *conversationService) Get(id string) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Conversation{}, fmt.Errorf("get %s: %w", id, ErrConversationNotFound)
	}
	return cloneConversation(s.conversations[i]), nil
}

// Create 新建一个带欢迎消息的对话，插入到最前并设为当前对话。
func (s *conversationService) Create(ctx context.Context) model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneConversation(s.createLocked(ctx))
}

func (s *conversationService) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("activate %s: %w", id, ErrConversationNotFound)
	}
	s.activeID = id
	return nil
}

// AppendMessage 追加一条消息。首条用户消息会替换占位标题，且只替换一次。
func (s *conversationService) AppendMessage(ctx context.Context, id string, msg model.ChatMessage) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Conversation{}, fmt.Errorf("append to %s: %w", id, ErrConversationNotFound)
	}
	conv := &s.conversations[i]
	if msg.Timestamp.IsZero() {
		msg.Timestamp = nowFunc()
	}
	if msg.Role == model.RoleUser && !conv.HasUserMessage() && conv.Title == model.DefaultConversationTitle {
		conv.Title = truncate(strings.TrimSpace(msg.Content), titleLength)
	}
	conv.Messages = append(conv.Messages, msg)
	s.persistLocked(ctx)
	return cloneConversation(*conv), nil
}

func (s *conversationService) Rename(ctx context.Context, id, title string) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Conversation{}, fmt.Errorf("rename %s: %w", id, ErrConversationNotFound)
	}
	s.conversations[i].Title = title
	s.persistLocked(ctx)
	return cloneConversation(s.conversations[i]), nil
}

// Delete 删除对话。删除当前对话时最新的剩余对话成为当前对话；删空后自动新建一个。
func (s *conversationService) Delete(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return "", fmt.Errorf("delete %s: %w", id, ErrConversationNotFound)
	}
	s.conversations = append(s.conversations[:i:i], s.conversations[i+1:]...)

	if len(s.conversations) == 0 {
		s.createLocked(ctx)
		return s.activeID, nil
	}
	if s.activeID == id {
		s.activeID = s.conversations[0].ID
	}
	s.persistLocked(ctx)
	return s.activeID, nil
}

func (s *conversationService) createLocked(ctx context.Context) model.Conversation {
	now := nowFunc()
	id := newID()
	conv := model.Conversation{
		ID:       id,
		Title:    model.DefaultConversationTitle,
		ThreadID: "chat_" + id,
		Messages: []model.ChatMessage{{
			Role:      model.RoleAssistant,
			Content:   model.WelcomeMessage,
			Timestamp: now,
		}},
		CreatedAt: now,
	}
	s.conversations = append([]model.Conversation{conv}, s.conversations...)
	s.activeID = id
	s.persistLocked(ctx)
	return conv
}

func (s *conversationService) indexLocked(id string) int {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *conversationService) persistLocked(ctx context.Context) {
	s.repo.Save(ctx, s.conversations)
}

func cloneConversation(c model.Conversation) model.Conversation {
	c.Messages = append([]model.ChatMessage(nil), c.Messages...)
	return c
}

// newID 返回按时间有序的 UUIDv7。
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// truncate 按字符截断，不会切断多字节字符。
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
