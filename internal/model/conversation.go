// Package model 包含了应用的数据模型定义。
package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Role 是消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultConversationTitle 是新会话的占位标题，首条用户消息发送后被替换一次。
const DefaultConversationTitle = "New conversation"

// WelcomeMessage 是每个新会话自动生成的第一条助手消息。
const WelcomeMessage = "Hello! I can help with University of Ibadan policies, admissions, course information, and campus services. What would you like to know?"

// Citation 是回答所依据的来源文档。
type Citation struct {
	Document string     `json:"document,omitempty"`
	Page     FlexString `json:"page,omitempty"`
	Content  string     `json:"content,omitempty"`
	Date     string     `json:"date,omitempty"`
	Source   string     `json:"source,omitempty"`
}

// ChatMessage 代表会话中的单条消息。
type ChatMessage struct {
	Role          Role       `json:"role"`
	Content       string     `json:"content"`
	UsedRetriever bool       `json:"usedRetriever"`
	Sources       []Citation `json:"sources"`
	IsError       bool       `json:"isError,omitempty"`
	TraceID       string     `json:"traceId,omitempty"`
	Details       string     `json:"details,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// MarshalJSON implements the json.Marshaler interface.
// usedRetriever 与 sources 只出现在助手消息上，sources 可以为空数组。
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	type plain ChatMessage
	out := struct {
		plain
		UsedRetriever *bool       `json:"usedRetriever,omitempty"`
		Sources       *[]Citation `json:"sources,omitempty"`
	}{plain: plain(m)}
	if m.Role == RoleAssistant {
		sources := m.Sources
		if sources == nil {
			sources = []Citation{}
		}
		out.UsedRetriever = &m.UsedRetriever
		out.Sources = &sources
	}
	return json.Marshal(out)
}

// Conversation 代表一个持久化的聊天记录，对应远程服务的一个对话线程。
type Conversation struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	ThreadID  string        `json:"threadId"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
}

// HasUserMessage 报告会话中是否已有用户消息。
func (c *Conversation) HasUserMessage() bool {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}

// FlexString 接受 JSON 字符串或数字，远程服务返回的页码两种形式都有。
type FlexString string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
