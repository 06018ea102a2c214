package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacarte-io/lacarte/internal/domain"
)

type fakeSettingsRepository struct {
	rows      []domain.SysConfig
	loadCalls int
}

func (r *fakeSettingsRepository) LoadAll(ctx context.Context) ([]domain.SysConfig, error) {
	r.loadCalls++
	return r.rows, nil
}

func (r *fakeSettingsRepository) Save(ctx context.Context, category, name, value string) error {
	for i, row := range r.rows {
		if row.Type == category && row.Name == name {
			r.rows[i].Value = value
			return nil
		}
	}
	r.rows = append(r.rows, domain.SysConfig{Type: category, Name: name, Value: value})
	return nil
}

func newTestManager(rows ...domain.SysConfig) (*Manager, *fakeSettingsRepository) {
	repo := &fakeSettingsRepository{rows: rows}
	return NewManager(repo, time.Minute), repo
}

func TestManagerTypedGetters(t *testing.T) {
	mgr, _ := newTestManager(
		domain.SysConfig{Type: "site", Name: "Title", Value: "La Carte"},
		domain.SysConfig{Type: "analytics", Name: "ViewRetentionDays", Value: "180"},
		domain.SysConfig{Type: "analytics", Name: "Enabled", Value: "true"},
		domain.SysConfig{Type: "analytics", Name: "Weight", Value: "0.1"},
	)

	assert.Equal(t, "La Carte", mgr.GetString("site", "Title"))
	assert.Equal(t, 180, mgr.GetInt("analytics", "ViewRetentionDays"))
	assert.EqualValues(t, 180, mgr.GetInt64("analytics", "ViewRetentionDays"))
	assert.True(t, mgr.GetBool("analytics", "Enabled"))
	assert.InDelta(t, 0.1, mgr.GetFloat64("analytics", "Weight"), 1e-9)

	assert.Equal(t, "", mgr.GetString("site", "Missing"))
	assert.Equal(t, 0, mgr.GetInt("missing", "Missing"))
}

func TestManagerCachesSnapshot(t *testing.T) {
	mgr, repo := newTestManager(domain.SysConfig{Type: "site", Name: "Title", Value: "v1"})

	_ = mgr.GetString("site", "Title")
	_ = mgr.GetString("site", "Title")
	_ = mgr.GetString("site", "Title")

	assert.Equal(t, 1, repo.loadCalls)
}

func TestManagerSaveRefreshesCache(t *testing.T) {
	mgr, _ := newTestManager(domain.SysConfig{Type: "site", Name: "Title", Value: "old"})

	require.Equal(t, "old", mgr.GetString("site", "Title"))
	require.NoError(t, mgr.Save(context.Background(), "site", "Title", "new"))
	assert.Equal(t, "new", mgr.GetString("site", "Title"))
}

func TestManagerSaveAll(t *testing.T) {
	mgr, repo := newTestManager()

	require.NoError(t, mgr.SaveAll(context.Background(), "site", map[string]string{
		"Phone": "+33 1 02 03 04 05",
		"Email": "hello@example.org",
	}))

	assert.Len(t, repo.rows, 2)
	assert.Equal(t, "+33 1 02 03 04 05", mgr.GetString("site", "Phone"))
}

func TestManagerCategoryCopy(t *testing.T) {
	mgr, _ := newTestManager(
		domain.SysConfig{Type: "site", Name: "Title", Value: "La Carte"},
		domain.SysConfig{Type: "site", Name: "Phone", Value: "0100000000"},
	)

	cat := mgr.Category("site")
	require.Len(t, cat, 2)
	cat["Title"] = "mutated"
	assert.Equal(t, "La Carte", mgr.GetString("site", "Title"))
}

func TestManagerBind(t *testing.T) {
	mgr, _ := newTestManager(
		domain.SysConfig{Type: "analytics", Name: "ViewRetentionDays", Value: "90"},
		domain.SysConfig{Type: "analytics", Name: "WebhookURL", Value: "https://hooks.example.org/x"},
	)

	var cfg struct {
		ViewRetentionDays int    `mapstructure:"ViewRetentionDays"`
		WebhookURL        string `mapstructure:"WebhookURL"`
	}
	require.NoError(t, mgr.Bind("analytics", &cfg))
	assert.Equal(t, 90, cfg.ViewRetentionDays)
	assert.Equal(t, "https://hooks.example.org/x", cfg.WebhookURL)
}

func TestManagerLocalizedText(t *testing.T) {
	mgr, _ := newTestManager(
		domain.SysConfig{Type: "site", Name: "Title", Value: `{"fr":"La Carte","en":"The Menu"}`},
	)

	assert.Equal(t, "La Carte", mgr.LocalizedText("site", "Title", "fr"))
	assert.Equal(t, "The Menu", mgr.LocalizedText("site", "Title", "en"))
	assert.Equal(t, "La Carte", mgr.LocalizedText("site", "Title", "de"))
}
