package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/internal/webserver"
	"github.com/lacarte-io/lacarte/pkg/common"
)

type menuItemPayload struct {
	MenuCode string                 `json:"menu_code"`
	Sort     *int                   `json:"sort"`
	Labels   map[string]interface{} `json:"labels"`
	Path     string                 `json:"path"`
	External *bool                  `json:"external"`
	Status   string                 `json:"status"`
}

func registerMenuRoutes() {
	webserver.ApiGET("/menus/:code", getMenu)

	webserver.AdminGET("/menus", adminListMenuItems)
	webserver.AdminPOST("/menus", adminCreateMenuItem)
	webserver.AdminPUT("/menus/:id", adminUpdateMenuItem)
	webserver.AdminDELETE("/menus/:id", adminDeleteMenuItem)
}

// getMenu returns one navigation menu with labels resolved for the
// caller's locale, in sort order.
func getMenu(c echo.Context) error {
	code := c.Param("code")
	var rows []domain.MenuItem
	err := webserver.GetDB(c).
		Where("menu_code = ? AND status = ?", code, common.ENABLED).
		Order("sort ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query menu", nil)
	}
	locale := requestLocale(c)
	items := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		items = append(items, map[string]interface{}{
			"id":       row.ID,
			"label":    settings.ResolveLocalized(row.Labels, locale),
			"path":     row.Path,
			"external": row.External,
		})
	}
	return ok(c, map[string]interface{}{
		"code":  code,
		"items": items,
	})
}

func adminListMenuItems(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := webserver.GetDB(c).Model(&domain.MenuItem{})
	if code := c.QueryParam("code"); code != "" {
		db = db.Where("menu_code = ?", code)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query menu items", err.Error())
	}
	var rows []domain.MenuItem
	if err := db.Order("menu_code ASC, sort ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query menu items", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func adminCreateMenuItem(c echo.Context) error {
	var payload menuItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse menu item", err.Error())
	}
	payload.MenuCode = strings.TrimSpace(payload.MenuCode)
	if payload.MenuCode == "" || len(payload.Labels) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Menu code and at least one localized label are required", nil)
	}
	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}
	now := time.Now()
	item := domain.MenuItem{
		ID:        common.UUIDint64(),
		MenuCode:  payload.MenuCode,
		Labels:    datatypes.JSONMap(payload.Labels),
		Path:      strings.TrimSpace(payload.Path),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if payload.Sort != nil {
		item.Sort = *payload.Sort
	}
	if payload.External != nil {
		item.External = *payload.External
	}
	if err := webserver.GetDB(c).Create(&item).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create menu item", err.Error())
	}
	auditLog(c, "menu.create", fmt.Sprintf("created menu item %d in %s", item.ID, item.MenuCode))
	return ok(c, item)
}

// menuItemUpdates builds a partial update map: absent payload fields
// leave the stored columns untouched.
func menuItemUpdates(payload menuItemPayload) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if s := strings.TrimSpace(payload.MenuCode); s != "" {
		updates["menu_code"] = s
	}
	if len(payload.Labels) > 0 {
		updates["labels"] = datatypes.JSONMap(payload.Labels)
	}
	if payload.Path != "" {
		updates["path"] = strings.TrimSpace(payload.Path)
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Sort != nil {
		updates["sort"] = *payload.Sort
	}
	if payload.External != nil {
		updates["external"] = *payload.External
	}
	return updates
}

func adminUpdateMenuItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid menu item ID", nil)
	}
	var item domain.MenuItem
	if err := webserver.GetDB(c).Where("id = ?", id).First(&item).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Menu item not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query menu item", err.Error())
	}
	var payload menuItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse menu item", err.Error())
	}
	if err := webserver.GetDB(c).Model(&item).Updates(menuItemUpdates(payload)).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update menu item", err.Error())
	}
	webserver.GetDB(c).Where("id = ?", id).First(&item)
	auditLog(c, "menu.update", fmt.Sprintf("updated menu item %d", id))
	return ok(c, item)
}

func adminDeleteMenuItem(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid menu item ID", nil)
	}
	if err := webserver.GetDB(c).Where("id = ?", id).Delete(&domain.MenuItem{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete menu item", err.Error())
	}
	auditLog(c, "menu.delete", fmt.Sprintf("deleted menu item %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
