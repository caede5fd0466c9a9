package service

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrGuideNotFound        = errors.New("guide not found")
	ErrInvalidVerbosity     = errors.New("invalid verbosity")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrInvalidGuideInput    = errors.New("invalid guide input")
	ErrInvalidFeedback      = errors.New("invalid feedback")
	ErrUnsupportedFormat    = errors.New("unsupported export format")
	// ErrArchiveDisabled 表示未配置对象存储时请求了归档。
	ErrArchiveDisabled = errors.New("export archive is not configured")
	// ErrSuperseded 表示请求被取消，或被同一上下文中更新的请求取代，结果被丢弃。
	ErrSuperseded = errors.New("request canceled or superseded by a newer one")
)
