package service

import (
	"context"
	"fmt"
	"sync"

	"ui-guide-go/internal/model"
	"ui-guide-go/internal/repository"
)

// PreferenceService 保存跨会话的用户偏好。
type PreferenceService interface {
	Get() model.Preferences
	SetVerbosity(ctx context.Context, v model.Verbosity) (model.Preferences, error)
}

type preferenceService struct {
	mu    sync.RWMutex
	repo  repository.PreferenceRepository
	prefs model.Preferences
}

// NewPreferenceService 从存储加载偏好。
func NewPreferenceService(ctx context.Context, repo repository.PreferenceRepository) PreferenceService {
	return &preferenceService{repo: repo, prefs: repo.Load(ctx)}
}

func (s *preferenceService) Get() model.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *preferenceService) SetVerbosity(ctx context.Context, v model.Verbosity) (model.Preferences, error) {
	if !v.Valid() {
		return model.Preferences{}, fmt.Errorf("%q: %w", v, ErrInvalidVerbosity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Verbosity = v
	s.repo.Save(ctx, s.prefs)
	return s.prefs, nil
}
