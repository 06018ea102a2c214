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

type categoryPayload struct {
	Slug   string                 `json:"slug"`
	Names  map[string]interface{} `json:"names"`
	Image  string                 `json:"image"`
	Sort   *int                   `json:"sort"`
	Status string                 `json:"status"`
}

func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listCategories)

	webserver.AdminGET("/categories", adminListCategories)
	webserver.AdminPOST("/categories", adminCreateCategory)
	webserver.AdminPUT("/categories/:id", adminUpdateCategory)
	webserver.AdminDELETE("/categories/:id", adminDeleteCategory)
}

func listCategories(c echo.Context) error {
	cats, err := catalogSvc.GetCategories(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", nil)
	}
	locale := requestLocale(c)
	out := make([]map[string]interface{}, 0, len(cats))
	for _, cat := range cats {
		out = append(out, map[string]interface{}{
			"category": cat,
			"name":     settings.ResolveLocalized(cat.Names, locale),
		})
	}
	return ok(c, out)
}

func adminListCategories(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := webserver.GetDB(c).Model(&domain.Category{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		db = db.Where("slug ILIKE ? OR names::text ILIKE ?", "%"+q+"%", "%"+q+"%")
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	var rows []domain.Category
	if err := db.Order("sort ASC, id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func adminCreateCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	payload.Slug = strings.TrimSpace(payload.Slug)
	if payload.Slug == "" || len(payload.Names) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Slug and at least one localized name are required", nil)
	}
	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}
	now := time.Now()
	cat := domain.Category{
		ID:        common.UUIDint64(),
		Slug:      payload.Slug,
		Names:     datatypes.JSONMap(payload.Names),
		Image:     strings.TrimSpace(payload.Image),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if payload.Sort != nil {
		cat.Sort = *payload.Sort
	}
	if err := webserver.GetDB(c).Create(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	auditLog(c, "category.create", fmt.Sprintf("created category %s (%d)", cat.Slug, cat.ID))
	return ok(c, cat)
}

// categoryUpdates builds a partial update map: absent payload fields
// leave the stored columns untouched.
func categoryUpdates(payload categoryPayload) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if s := strings.TrimSpace(payload.Slug); s != "" {
		updates["slug"] = s
	}
	if len(payload.Names) > 0 {
		updates["names"] = datatypes.JSONMap(payload.Names)
	}
	if payload.Image != "" {
		updates["image"] = strings.TrimSpace(payload.Image)
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Sort != nil {
		updates["sort"] = *payload.Sort
	}
	return updates
}

func adminUpdateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := webserver.GetDB(c).Where("id = ?", id).First(&cat).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := webserver.GetDB(c).Model(&cat).Updates(categoryUpdates(payload)).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update category", err.Error())
	}
	webserver.GetDB(c).Where("id = ?", id).First(&cat)
	auditLog(c, "category.update", fmt.Sprintf("updated category %d", id))
	return ok(c, cat)
}

func adminDeleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	db := webserver.GetDB(c)
	var count int64
	if err := db.Model(&domain.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category products", err.Error())
	}
	if count > 0 {
		return fail(c, http.StatusConflict, "CATEGORY_NOT_EMPTY", "Category still has products", nil)
	}
	if err := db.Where("id = ?", id).Delete(&domain.Category{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	auditLog(c, "category.delete", fmt.Sprintf("deleted category %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
