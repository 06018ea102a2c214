package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/config"
	"github.com/lacarte-io/lacarte/internal/analytics"
	"github.com/lacarte-io/lacarte/internal/auth"
	"github.com/lacarte-io/lacarte/internal/catalog"
	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/internal/notify"
	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/pkg/debounce"
	"github.com/lacarte-io/lacarte/pkg/metrics"
)

// DefaultDebounceWindow is how long a session's repeat views of the same
// product are not counted.
const DefaultDebounceWindow = 30 * time.Minute

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron

	settingsMgr   *settings.Manager
	catalogSvc    *catalog.Service
	analyticsSvc  *analytics.Service
	authSvc       *auth.Service
	notifySvc     *notify.Service
	debounceStore *debounce.Store
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SettingsProvider  = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Settings() *settings.Manager {
	return a.settingsMgr
}

func (a *Application) Catalog() *catalog.Service {
	return a.catalogSvc
}

func (a *Application) Analytics() *analytics.Service {
	return a.analyticsSvc
}

func (a *Application) Auth() *auth.Service {
	return a.authSvc
}

func (a *Application) Debounce() *debounce.Store {
	return a.debounceStore
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB, err = getDatabase(cfg.Database)
	if err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.settingsMgr = settings.NewManager(settings.NewGormRepository(a.gormDB), settings.DefaultCacheTTL)

	a.debounceStore, err = debounce.Open(cfg.System.Workdir, DefaultDebounceWindow)
	if err != nil {
		return err
	}

	a.catalogSvc = catalog.NewService(catalog.NewGormProductRepository(a.gormDB))
	a.analyticsSvc, err = analytics.NewService(
		analytics.NewGormRepository(a.gormDB),
		catalog.NewGormProductRepository(a.gormDB),
		8,
	)
	if err != nil {
		return err
	}

	a.notifySvc = notify.NewService(cfg.Smtp, a.settingsMgr)
	a.authSvc = auth.NewService(auth.NewLocalProvider(a.gormDB, cfg.Web.JwtSecret), a.notifySvc)

	go func() {
		time.Sleep(3 * time.Second)
		a.checkSuper()
		a.checkSettings()
		a.checkMenus()
		a.checkCatalog()
		if err := a.analyticsSvc.WarmLeaderboard(context.Background()); err != nil {
			zap.L().Warn("leaderboard warm-up failed", zap.Error(err))
		}
	}()

	a.initJob()
	return nil
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.analyticsSvc != nil {
		a.analyticsSvc.Stop()
	}
	if a.debounceStore != nil {
		_ = a.debounceStore.Close()
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
