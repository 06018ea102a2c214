package webserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/config"
	"github.com/lacarte-io/lacarte/pkg/common"
)

const sessionName = "lacarte_session"

// DBProvider provides database access for request handlers.
type DBProvider interface {
	DB() *gorm.DB
}

type WebServer struct {
	cfg   *config.AppConfig
	root  *echo.Echo
	api   *echo.Group
	admin *echo.Group
}

var server *WebServer

type payloadValidator struct {
	validate *validator.Validate
}

func (v *payloadValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Init builds the Echo server: jsoniter serializer, validator, session
// middleware, prometheus metrics, zap request logging, and injects the
// gorm handle into every request context.
func Init(app DBProvider, cfg *config.AppConfig) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &jsonSerializer{}
	e.Validator = &payloadValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cfg.Web.Secret))))
	e.Use(echoprometheus.NewMiddleware(cfg.System.Appid))
	e.Use(requestLogger())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("db", app.DB())
			return next(c)
		}
	})

	e.GET("/metrics", echoprometheus.NewHandler())

	admin := e.Group("/admin")
	admin.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.Web.JwtSecret),
	}))
	admin.Use(requireAdmin)

	server = &WebServer{
		cfg:   cfg,
		root:  e,
		api:   e.Group("/api"),
		admin: admin,
	}
	return server
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)))
			return err
		}
	}
}

// requireAdmin gates the admin group on the level claim of the JWT.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
		}
		level := cast.ToString(claims["level"])
		if level != "admin" && level != "super" {
			return echo.NewHTTPError(http.StatusForbidden, "administrator access required")
		}
		c.Set("username", cast.ToString(claims["email"]))
		return next(c)
	}
}

// Listen starts the HTTP listener and blocks.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.cfg.Web.Host, server.cfg.Web.Port)
	zap.L().Info("web server starting", zap.String("addr", addr))
	return server.root.Start(addr)
}

// Shutdown closes the HTTP listener.
func Shutdown() {
	if server != nil {
		_ = server.root.Close()
	}
}

// Route registrars: handlers register themselves against the shared
// server instance.

func ApiGET(path string, h echo.HandlerFunc)    { server.api.GET(path, h) }
func ApiPOST(path string, h echo.HandlerFunc)   { server.api.POST(path, h) }
func ApiPUT(path string, h echo.HandlerFunc)    { server.api.PUT(path, h) }
func ApiDELETE(path string, h echo.HandlerFunc) { server.api.DELETE(path, h) }

func AdminGET(path string, h echo.HandlerFunc)    { server.admin.GET(path, h) }
func AdminPOST(path string, h echo.HandlerFunc)   { server.admin.POST(path, h) }
func AdminPUT(path string, h echo.HandlerFunc)    { server.admin.PUT(path, h) }
func AdminDELETE(path string, h echo.HandlerFunc) { server.admin.DELETE(path, h) }

// GetDB returns the request-scoped gorm handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get("db").(*gorm.DB)
}

// SessionID returns the visitor's stable session identifier, creating
// one on first use. Used for view debouncing and the view log.
func SessionID(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	if id, ok := sess.Values["sid"].(string); ok && id != "" {
		return id
	}
	id := common.UUID()
	sess.Values["sid"] = id
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
	}
	_ = sess.Save(c.Request(), c.Response())
	return id
}
