package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/config"
	"github.com/lacarte-io/lacarte/internal/settings"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides runtime settings access
type SettingsProvider interface {
	Settings() *settings.Manager
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines the provider interfaces for services that need the
// full application context. Prefer depending on a single provider.
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
