package repository

import (
	"context"

	"ui-guide-go/internal/model"
)

// GuideRepository 定义了指南集合的持久化接口。
type GuideRepository interface {
	Load(ctx context.Context) []model.Guide
	Save(ctx context.Context, guides []model.Guide)
}

type guideRepository struct {
	store *Store
}

// NewGuideRepository 创建一个新的 GuideRepository 实例。
func NewGuideRepository(store *Store) GuideRepository {
	return &guideRepository{store: store}
}

func (r *guideRepository) Load(ctx context.Context) []model.Guide {
	return ReadList[model.Guide](ctx, r.store, GuidesKey)
}

func (r *guideRepository) Save(ctx context.Context, guides []model.Guide) {
	r.store.Write(ctx, GuidesKey, guides)
}
