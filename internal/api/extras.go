package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/internal/webserver"
	"github.com/lacarte-io/lacarte/pkg/common"
)

type extraPayload struct {
	Names map[string]interface{} `json:"names"`
	Price *float64               `json:"price"`
}

func registerExtraRoutes() {
	webserver.AdminGET("/extras", adminListExtras)
	webserver.AdminPOST("/extras", adminCreateExtra)
	webserver.AdminPUT("/extras/:id", adminUpdateExtra)
	webserver.AdminDELETE("/extras/:id", adminDeleteExtra)
}

func adminListExtras(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := webserver.GetDB(c).Model(&domain.Extra{})
	if q := c.QueryParam("q"); q != "" {
		db = db.Where("names::text ILIKE ?", "%"+q+"%")
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query extras", err.Error())
	}
	var rows []domain.Extra
	if err := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query extras", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func adminCreateExtra(c echo.Context) error {
	var payload extraPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse extra", err.Error())
	}
	if len(payload.Names) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "At least one localized name is required", nil)
	}
	if payload.Price != nil && *payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
	}
	now := time.Now()
	ex := domain.Extra{
		ID:        common.UUIDint64(),
		Names:     datatypes.JSONMap(payload.Names),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if payload.Price != nil {
		ex.Price = *payload.Price
	}
	if err := webserver.GetDB(c).Create(&ex).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create extra", err.Error())
	}
	auditLog(c, "extra.create", fmt.Sprintf("created extra %d", ex.ID))
	return ok(c, ex)
}

func adminUpdateExtra(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid extra ID", nil)
	}
	var ex domain.Extra
	if err := webserver.GetDB(c).Where("id = ?", id).First(&ex).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Extra not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query extra", err.Error())
	}
	var payload extraPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse extra", err.Error())
	}
	updates := map[string]interface{}{"updated_at": time.Now()}
	if len(payload.Names) > 0 {
		updates["names"] = datatypes.JSONMap(payload.Names)
	}
	if payload.Price != nil {
		if *payload.Price < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
		}
		updates["price"] = *payload.Price
	}
	if err := webserver.GetDB(c).Model(&ex).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update extra", err.Error())
	}
	webserver.GetDB(c).Where("id = ?", id).First(&ex)
	auditLog(c, "extra.update", fmt.Sprintf("updated extra %d", id))
	return ok(c, ex)
}

func adminDeleteExtra(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid extra ID", nil)
	}
	db := webserver.GetDB(c)
	if err := db.Where("id = ?", id).Delete(&domain.Extra{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete extra", err.Error())
	}
	db.Where("extra_id = ?", id).Delete(&domain.ProductExtra{})
	auditLog(c, "extra.delete", fmt.Sprintf("deleted extra %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
