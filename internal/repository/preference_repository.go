package repository

import (
	"context"

	"ui-guide-go/internal/model"
)

// PreferenceRepository 定义了用户偏好的持久化接口。
type PreferenceRepository interface {
	Load(ctx context.Context) model.Preferences
	Save(ctx context.Context, prefs model.Preferences)
}

type preferenceRepository struct {
	store *Store
}

// NewPreferenceRepository 创建一个新的 PreferenceRepository 实例。
func NewPreferenceRepository(store *Store) PreferenceRepository {
	return &preferenceRepository{store: store}
}

// Load 读取偏好，未知的详细程度回退为默认值。
func (r *preferenceRepository) Load(ctx context.Context) model.Preferences {
	prefs := Read(ctx, r.store, PreferencesKey, model.DefaultPreferences())
	if !prefs.Verbosity.Valid() {
		prefs.Verbosity = model.DefaultPreferences().Verbosity
	}
	return prefs
}

func (r *preferenceRepository) Save(ctx context.Context, prefs model.Preferences) {
	r.store.Write(ctx, PreferencesKey, prefs)
}
