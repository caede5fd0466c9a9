package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"ui-guide-go/internal/model"
	"ui-guide-go/pkg/assistant"
	"ui-guide-go/pkg/log"
)

const chatScope = "chat"

// TurnOutcome 是一次聊天请求的结果类别。
type TurnOutcome string

const (
	OutcomeAnswered TurnOutcome = "answered"
	OutcomeFailed   TurnOutcome = "failed"
	OutcomeCanceled TurnOutcome = "canceled"
)

// TurnResult 是 Send 的返回值。取消的请求不带消息。
type TurnResult struct {
	Outcome TurnOutcome        `json:"outcome"`
	Message *model.ChatMessage `json:"message,omitempty"`
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	// Send 追加用户消息并向助手提问。同一对话中更新的请求会取代尚未完成的旧请求。
	Send(ctx context.Context, conversationID, content string) (TurnResult, error)
	// Cancel 取消对话中尚未完成的请求。
	Cancel(conversationID string) bool
}

type chatService struct {
	client        assistant.Client
	conversations ConversationService
	preferences   PreferenceService
	tracker       *assistant.Tracker
	// turnMu 保证“追加消息 + 登记请求”与“检查令牌 + 追加结果”各自原子执行
	turnMu sync.Mutex
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(client assistant.Client, conversations ConversationService, preferences PreferenceService, tracker *assistant.Tracker) ChatService {
	return &chatService{
		client:        client,
		conversations: conversations,
		preferences:   preferences,
		tracker:       tracker,
	}
}

func (s *chatService) Send(ctx context.Context, conversationID, content string) (TurnResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	s.turnMu.Lock()
	conv, err := s.conversations.AppendMessage(ctx, conversationID, model.ChatMessage{Role: model.RoleUser, Content: content})
	if err != nil {
		s.turnMu.Unlock()
		return TurnResult{}, err
	}
	askCtx, tok := s.tracker.Begin(ctx, chatScope, conversationID)
	s.turnMu.Unlock()

	verbosity := s.preferences.Get().Verbosity
	answer, askErr := s.client.Ask(askCtx, assistant.AskRequest{
		Message:   wrapChatMessage(content, verbosity),
		ThreadID:  conv.ThreadID,
		Mode:      chatScope,
		Verbosity: string(verbosity),
	})

	s.turnMu.Lock()
	defer s.turnMu.Unlock()
	current := s.tracker.IsCurrent(tok)
	s.tracker.End(tok)
	if !current || assistant.IsCanceled(askErr) {
		log.Infow("discarding superseded chat turn", "conversationId", conversationID)
		return TurnResult{Outcome: OutcomeCanceled}, nil
	}

	outcome := OutcomeAnswered
	var msg model.ChatMessage
	if askErr != nil {
		outcome = OutcomeFailed
		msg = errorMessage(askErr)
		log.Warnw("chat turn failed", "conversationId", conversationID, "error", askErr)
	} else {
		msg = model.ChatMessage{
			Role:          model.RoleAssistant,
			Content:       answer.Answer,
			UsedRetriever: answer.UsedRetriever,
			Sources:       answer.Sources,
		}
	}

	updated, err := s.conversations.AppendMessage(context.WithoutCancel(ctx), conversationID, msg)
	if errors.Is(err, ErrConversationNotFound) {
		// 对话在请求期间被删除，结果无处可放
		return TurnResult{Outcome: OutcomeCanceled}, nil
	}
	if err != nil {
		return TurnResult{}, err
	}
	last := updated.Messages[len(updated.Messages)-1]
	return TurnResult{Outcome: outcome, Message: &last}, nil
}

func (s *chatService) Cancel(conversationID string) bool {
	return s.tracker.Cancel(chatScope, conversationID)
}

// wrapChatMessage 在非 normal 级别时把详细程度要求写进问题本身。
func wrapChatMessage(content string, v model.Verbosity) string {
	if v == "" || v == model.VerbosityNormal {
		return content
	}
	return fmt.Sprintf("Please respond in a %s manner.\n\nUser question: %s", v, content)
}

// errorMessage 将请求失败转换为一条错误消息，文案按状态码类别选择。
func errorMessage(err error) model.ChatMessage {
	msg := model.ChatMessage{Role: model.RoleAssistant, IsError: true, Content: UserFacingError(err)}
	var apiErr *assistant.Error
	if errors.As(err, &apiErr) {
		msg.TraceID = apiErr.TraceID
		msg.Details = apiErr.Details
	}
	return msg
}

// UserFacingError 返回适合展示给用户的错误文案。
func UserFacingError(err error) string {
	var apiErr *assistant.Error
	if !errors.As(err, &apiErr) {
		return "Something went wrong. Please try again."
	}
	switch {
	case apiErr.Status == http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment and try again."
	case apiErr.Status >= 500:
		return "The assistant is having trouble right now. Please try again shortly."
	case apiErr.Kind == assistant.KindTimeout:
		return "The request timed out. Please try again."
	case apiErr.Kind == assistant.KindNetworkUnavailable:
		return "Unable to reach the server. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
