// Package repository 提供了数据访问层的实现。
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ui-guide-go/pkg/log"
	"ui-guide-go/pkg/metrics"
)

// ErrNotFound 表示键不存在。
var ErrNotFound = errors.New("key not found")

// Backend 是一个以字符串为键、字节为值的存储。
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Store 在 Backend 之上提供 JSON 读写，所有操作都不会返回错误。
// 失败只记录日志，调用方以内存状态为准。
type Store struct {
	backend Backend
}

// NewStore 创建一个新的 Store。
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Write 将 value 序列化后写入 key。
func (s *Store) Write(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		recordFailure("encode", key, err)
		return
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		recordFailure("write", key, err)
	}
}

// Remove 删除 key，键不存在不视为失败。
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		recordFailure("remove", key, err)
	}
}

// Close 关闭底层存储。
func (s *Store) Close() error {
	return s.backend.Close()
}

// Read 读取 key 并反序列化为 T。键不存在、读取失败或内容损坏时返回 fallback。
func Read[T any](ctx context.Context, s *Store, key string, fallback T) T {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback
	}
	if err != nil {
		recordFailure("read", key, err)
		return fallback
	}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fallback
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		recordFailure("decode", key, err)
		return fallback
	}
	return out
}

// ReadList 读取 JSON 数组形式的集合，逐条解码，跳过损坏的条目而保留其余记录。
// 整个值不是数组时返回空集合。
func ReadList[T any](ctx context.Context, s *Store, key string) []T {
	raw := Read(ctx, s, key, []json.RawMessage{})
	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			recordFailure("decode", key, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		out = append(out, v)
	}
	return out
}

func recordFailure(op, key string, err error) {
	metrics.StoreFailuresTotal.WithLabelValues(op).Inc()
	log.Warnw("store operation failed", "operation", op, "key", key, "error", err)
}
