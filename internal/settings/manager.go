package settings

import (
	"context"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
)

// DefaultCacheTTL is how long the settings snapshot is served before the
// manager reloads from the database.
const DefaultCacheTTL = 30 * time.Second

// Repository loads and stores settings rows.
type Repository interface {
	LoadAll(ctx context.Context) ([]domain.SysConfig, error)
	Save(ctx context.Context, category, name, value string) error
}

// GormRepository is the database-backed settings repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) LoadAll(ctx context.Context) ([]domain.SysConfig, error) {
	var rows []domain.SysConfig
	err := r.db.WithContext(ctx).Order("sort ASC").Find(&rows).Error
	return rows, errors.Wrap(err, "settings load")
}

func (r *GormRepository) Save(ctx context.Context, category, name, value string) error {
	var row domain.SysConfig
	err := r.db.WithContext(ctx).Where("type = ? AND name = ?", category, name).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(r.db.WithContext(ctx).Create(&domain.SysConfig{
			Type:  category,
			Name:  name,
			Value: value,
		}).Error, "settings create")
	case err != nil:
		return errors.Wrap(err, "settings query")
	}
	return errors.Wrap(r.db.WithContext(ctx).Model(&domain.SysConfig{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error,
		"settings update")
}

// Manager caches settings rows and exposes typed getters. Values are
// keyed by category ("site", "analytics", "smtp", ...) and name.
type Manager struct {
	repo     Repository
	ttl      time.Duration
	mu       sync.RWMutex
	values   map[string]map[string]string
	loadedAt time.Time
}

func NewManager(repo Repository, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Manager{repo: repo, ttl: ttl, values: map[string]map[string]string{}}
}

func (m *Manager) snapshot() map[string]map[string]string {
	m.mu.RLock()
	fresh := time.Since(m.loadedAt) < m.ttl && len(m.values) > 0
	vals := m.values
	m.mu.RUnlock()
	if fresh {
		return vals
	}
	m.Reload()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values
}

// Reload replaces the cached snapshot from the repository. Failures keep
// the previous snapshot.
func (m *Manager) Reload() {
	rows, err := m.repo.LoadAll(context.Background())
	if err != nil {
		zap.L().Error("settings reload failed", zap.Error(err))
		return
	}
	next := map[string]map[string]string{}
	for _, row := range rows {
		cat := next[row.Type]
		if cat == nil {
			cat = map[string]string{}
			next[row.Type] = cat
		}
		cat[row.Name] = row.Value
	}
	m.mu.Lock()
	m.values = next
	m.loadedAt = time.Now()
	m.mu.Unlock()
}

func (m *Manager) GetString(category, name string) string {
	if cat, ok := m.snapshot()[category]; ok {
		return cat[name]
	}
	return ""
}

func (m *Manager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *Manager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *Manager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

func (m *Manager) GetFloat64(category, name string) float64 {
	return cast.ToFloat64(m.GetString(category, name))
}

// Category returns a copy of all values under one category.
func (m *Manager) Category(category string) map[string]string {
	out := map[string]string{}
	for k, v := range m.snapshot()[category] {
		out[k] = v
	}
	return out
}

// Bind decodes one settings category into a struct using mapstructure
// field tags.
func (m *Manager) Bind(category string, out interface{}) error {
	in := map[string]interface{}{}
	for k, v := range m.snapshot()[category] {
		in[k] = v
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "settings bind")
	}
	return errors.Wrap(decoder.Decode(in), "settings bind")
}

// Save writes one value through to the repository and refreshes the cache.
func (m *Manager) Save(ctx context.Context, category, name, value string) error {
	if err := m.repo.Save(ctx, category, name, value); err != nil {
		return err
	}
	m.Reload()
	return nil
}

// SaveAll writes a batch of category-scoped values.
func (m *Manager) SaveAll(ctx context.Context, category string, values map[string]string) error {
	for name, value := range values {
		if err := m.repo.Save(ctx, category, name, value); err != nil {
			return err
		}
	}
	m.Reload()
	return nil
}
