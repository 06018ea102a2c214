package api

import (
	"github.com/lacarte-io/lacarte/internal/analytics"
	"github.com/lacarte-io/lacarte/internal/auth"
	"github.com/lacarte-io/lacarte/internal/catalog"
	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/pkg/debounce"
)

// Handlers in this package register themselves against the shared web
// server and reach their use cases through these package-level services.
var (
	catalogSvc    *catalog.Service
	analyticsSvc  *analytics.Service
	authSvc       *auth.Service
	settingsMgr   *settings.Manager
	debounceStore *debounce.Store
)

// Deps carries the constructed services into the handlers package.
type Deps struct {
	Catalog   *catalog.Service
	Analytics *analytics.Service
	Auth      *auth.Service
	Settings  *settings.Manager
	Debounce  *debounce.Store
}

// Register wires the services and registers every route group.
func Register(d Deps) {
	catalogSvc = d.Catalog
	analyticsSvc = d.Analytics
	authSvc = d.Auth
	settingsMgr = d.Settings
	debounceStore = d.Debounce

	registerProductRoutes()
	registerCategoryRoutes()
	registerIngredientRoutes()
	registerExtraRoutes()
	registerTrackingRoutes()
	registerAnalyticsRoutes()
	registerAuthRoutes()
	registerSettingsRoutes()
	registerMenuRoutes()
	registerExportRoutes()
}
