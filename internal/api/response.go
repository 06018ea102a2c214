package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/internal/webserver"
	"github.com/lacarte-io/lacarte/pkg/common"
)

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	body := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if detail != nil {
		body["detail"] = detail
	}
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"error":   body,
	})
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"items":       items,
			"total":       total,
			"page":        page,
			"page_size":   pageSize,
			"total_pages": totalPages,
		},
	})
}

// parsePagination accepts page plus perPage (front-end) or pageSize
// (legacy) query parameters. The size cap matches the catalog service
// so admin and public listings agree on the limit.
func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	for _, name := range []string{"perPage", "pageSize"} {
		if v := c.QueryParam(name); v != "" {
			if ps, err := strconv.Atoi(v); err == nil && ps > 0 && ps <= 200 {
				pageSize = ps
				break
			}
		}
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// requestLocale resolves the preferred locale from the locale query
// parameter, falling back to Accept-Language.
func requestLocale(c echo.Context) string {
	if l := c.QueryParam("locale"); l != "" {
		return settings.MatchLocale(l)
	}
	return settings.MatchLocale(c.Request().Header.Get("Accept-Language"))
}

// auditLog records an admin mutation in the operations log, best effort.
func auditLog(c echo.Context, action, desc string) {
	name, _ := c.Get("username").(string)
	_ = webserver.GetDB(c).Create(&domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}).Error
}
