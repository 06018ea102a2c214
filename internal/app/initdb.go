package app

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/pkg/common"
)

type settingSchema struct {
	Category string
	Name     string
	Default  string
	Remark   string
}

// settingSchemas seed the runtime settings table. Multilingual values
// store a JSON locale map; the settings manager resolves them per
// request.
var settingSchemas = []settingSchema{
	{"site", "Title", `{"fr":"La Carte","en":"La Carte","de":"La Carte"}`, "site title"},
	{"site", "Description", `{"fr":"Cuisine de saison au coeur de la ville","en":"Seasonal cooking in the heart of town","de":"Saisonale Küche im Herzen der Stadt"}`, "site tagline"},
	{"site", "OpeningHours", `{"fr":"Mar-Dim 12h-22h","en":"Tue-Sun 12pm-10pm","de":"Di-So 12-22 Uhr"}`, "opening hours"},
	{"site", "Address", "1 rue des Halles, 75001 Paris", "street address"},
	{"site", "Phone", "+33 1 00 00 00 00", "contact phone"},
	{"site", "Email", "bonjour@example.org", "contact email"},
	{"site", "Currency", "EUR", "display currency"},
	{"site", "PublicURL", "https://lacarte.example.org", "public site base url"},
	{"site", "SocialLinks", "", "social profile links"},
	{"analytics", "ViewRetentionDays", "180", "view log retention in days"},
	{"analytics", "WebhookURL", "", "event webhook endpoint"},
	{"smtp", "ReplyTo", "", "reply-to address for notifications"},
}

func (a *Application) checkSuper() {
	const superEmail = "admin@lacarte.local"
	const defaultPassword = "lacarte-admin"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var user domain.SysUser
	err = a.gormDB.Where("email = ?", superEmail).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Email:     superEmail,
			Username:  "admin",
			Password:  string(hashed),
			Level:     "super",
			Status:    common.ENABLED,
			Locale:    "fr",
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetLevel := !strings.EqualFold(user.Level, "super")
	resetStatus := !strings.EqualFold(user.Status, common.ENABLED)
	if !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}
	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default super admin account",
		zap.String("email", superEmail),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

func (a *Application) checkSettings() {
	for sortid, schema := range settingSchemas {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", schema.Category, schema.Name).
			Count(&count)
		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   schema.Category,
				Name:   schema.Name,
				Value:  schema.Default,
				Remark: schema.Remark,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Category+"."+schema.Name))
		}
	}
	a.settingsMgr.Reload()
}

func (a *Application) checkMenus() {
	var count int64
	a.gormDB.Model(&domain.MenuItem{}).Count(&count)
	if count > 0 {
		return
	}
	items := []domain.MenuItem{
		{MenuCode: "header", Sort: 1, Path: "/", Labels: datatypes.JSONMap{"fr": "Accueil", "en": "Home", "de": "Startseite"}},
		{MenuCode: "header", Sort: 2, Path: "/menu", Labels: datatypes.JSONMap{"fr": "La carte", "en": "Menu", "de": "Speisekarte"}},
		{MenuCode: "header", Sort: 3, Path: "/contact", Labels: datatypes.JSONMap{"fr": "Contact", "en": "Contact", "de": "Kontakt"}},
		{MenuCode: "footer", Sort: 1, Path: "/legal", Labels: datatypes.JSONMap{"fr": "Mentions légales", "en": "Legal notice", "de": "Impressum"}},
	}
	now := time.Now()
	for i := range items {
		items[i].ID = common.UUIDint64()
		items[i].Status = common.ENABLED
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	if err := a.gormDB.Create(&items).Error; err != nil {
		zap.L().Error("failed to seed menus", zap.Error(err))
		return
	}
	zap.L().Info("initialized default navigation menus")
}

func (a *Application) checkCatalog() {
	var count int64
	a.gormDB.Model(&domain.Category{}).Count(&count)
	if count > 0 {
		return
	}
	now := time.Now()
	starters := domain.Category{
		ID:        common.UUIDint64(),
		Slug:      "starters",
		Names:     datatypes.JSONMap{"fr": "Entrées", "en": "Starters", "de": "Vorspeisen"},
		Sort:      1,
		Status:    common.ENABLED,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mains := domain.Category{
		ID:        common.UUIDint64(),
		Slug:      "mains",
		Names:     datatypes.JSONMap{"fr": "Plats", "en": "Mains", "de": "Hauptgerichte"},
		Sort:      2,
		Status:    common.ENABLED,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.gormDB.Create(&[]domain.Category{starters, mains}).Error; err != nil {
		zap.L().Error("failed to seed categories", zap.Error(err))
		return
	}
	zap.L().Info("initialized default catalog categories")
}
