package service

import (
	"context"
	"fmt"
	"sync"

	"ui-guide-go/internal/model"
	"ui-guide-go/internal/repository"
)

const (
	// MaxGuides 是保存的指南数量上限，超出时淘汰最旧的。
	MaxGuides        = 25
	guideTitleLength = 60
)

// GuideService 定义了指南集合的接口。指南创建后只能重命名或删除。
type GuideService interface {
	List() []model.Guide
	Get(id string) (model.Guide, error)
	Create(ctx context.Context, guide model.Guide) model.Guide
	Rename(ctx context.Context, id, title string) (model.Guide, error)
	Delete(ctx context.Context, id string) error
}

type guideService struct {
	mu     sync.Mutex
	repo   repository.GuideRepository
	guides []model.Guide
}

// NewGuideService 从存储加载指南。
func NewGuideService(ctx context.Context, repo repository.GuideRepository) GuideService {
	guides := repo.Load(ctx)
	if len(guides) > MaxGuides {
		guides = guides[:MaxGuides]
	}
	return &guideService{repo: repo, guides: guides}
}

func (s *guideService) List() []model.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Guide(nil), s.guides...)
}

func (s *guideService) Get(id string) (model.Guide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Guide{}, fmt.Errorf("get %s: %w", id, ErrGuideNotFound)
	}
	return s.guides[i], nil
}

// Create 插入到最前并截断到上限。未设置的 ID 与创建时间会被补齐。
func (s *guideService) Create(ctx context.Context, guide model.Guide) model.Guide {
	s.mu.Lock()
	defer s.mu.Unlock()
	if guide.ID == "" {
		guide.ID = newID()
	}
	if guide.CreatedAt.IsZero() {
		guide.CreatedAt = nowFunc()
	}
	if guide.Sources == nil {
		guide.Sources = []model.Citation{}
	}
	s.guides = append([]model.Guide{guide}, s.guides...)
	if len(s.guides) > MaxGuides {
		s.guides = s.guides[:MaxGuides]
	}
	s.repo.Save(ctx, s.guides)
	return guide
}

func (s *guideService) Rename(ctx context.Context, id, title string) (model.Guide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Guide{}, fmt.Errorf("rename %s: %w", id, ErrGuideNotFound)
	}
	s.guides[i].Title = title
	s.repo.Save(ctx, s.guides)
	return s.guides[i], nil
}

func (s *guideService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrGuideNotFound)
	}
	s.guides = append(s.guides[:i:i], s.guides[i+1:]...)
	s.repo.Save(ctx, s.guides)
	return nil
}

func (s *guideService) indexLocked(id string) int {
	for i := range s.guides {
		if s.guides[i].ID == id {
			return i
		}
	}
	return -1
}
