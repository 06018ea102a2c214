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

type ingredientPayload struct {
	Names    map[string]interface{} `json:"names"`
	Allergen *bool                  `json:"allergen"`
}

func registerIngredientRoutes() {
	webserver.AdminGET("/ingredients", adminListIngredients)
	webserver.AdminPOST("/ingredients", adminCreateIngredient)
	webserver.AdminPUT("/ingredients/:id", adminUpdateIngredient)
	webserver.AdminDELETE("/ingredients/:id", adminDeleteIngredient)
}

func adminListIngredients(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := webserver.GetDB(c).Model(&domain.Ingredient{})
	if q := c.QueryParam("q"); q != "" {
		db = db.Where("names::text ILIKE ?", "%"+q+"%")
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query ingredients", err.Error())
	}
	var rows []domain.Ingredient
	if err := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query ingredients", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func adminCreateIngredient(c echo.Context) error {
	var payload ingredientPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse ingredient", err.Error())
	}
	if len(payload.Names) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "At least one localized name is required", nil)
	}
	now := time.Now()
	ing := domain.Ingredient{
		ID:        common.UUIDint64(),
		Names:     datatypes.JSONMap(payload.Names),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if payload.Allergen != nil {
		ing.Allergen = *payload.Allergen
	}
	if err := webserver.GetDB(c).Create(&ing).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create ingredient", err.Error())
	}
	auditLog(c, "ingredient.create", fmt.Sprintf("created ingredient %d", ing.ID))
	return ok(c, ing)
}

func adminUpdateIngredient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid ingredient ID", nil)
	}
	var ing domain.Ingredient
	if err := webserver.GetDB(c).Where("id = ?", id).First(&ing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query ingredient", err.Error())
	}
	var payload ingredientPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse ingredient", err.Error())
	}
	updates := map[string]interface{}{"updated_at": time.Now()}
	if len(payload.Names) > 0 {
		updates["names"] = datatypes.JSONMap(payload.Names)
	}
	if payload.Allergen != nil {
		updates["allergen"] = *payload.Allergen
	}
	if err := webserver.GetDB(c).Model(&ing).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update ingredient", err.Error())
	}
	webserver.GetDB(c).Where("id = ?", id).First(&ing)
	auditLog(c, "ingredient.update", fmt.Sprintf("updated ingredient %d", id))
	return ok(c, ing)
}

func adminDeleteIngredient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid ingredient ID", nil)
	}
	db := webserver.GetDB(c)
	if err := db.Where("id = ?", id).Delete(&domain.Ingredient{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete ingredient", err.Error())
	}
	db.Where("ingredient_id = ?", id).Delete(&domain.ProductIngredient{})
	auditLog(c, "ingredient.delete", fmt.Sprintf("deleted ingredient %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
