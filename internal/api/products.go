package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lacarte-io/lacarte/internal/catalog"
	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/internal/webserver"
	"github.com/lacarte-io/lacarte/pkg/common"
)

type productPayload struct {
	CategoryID   int64                  `json:"category_id,string"`
	Slug         string                 `json:"slug" validate:"required,min=1,max=200"`
	Names        map[string]interface{} `json:"names"`
	Descriptions map[string]interface{} `json:"descriptions"`
	Price        *float64               `json:"price"`
	Image        string                 `json:"image"`
	Status       string                 `json:"status"`
	Featured     *bool                  `json:"featured"`
	Popular      *bool                  `json:"popular"`
	Trending     *bool                  `json:"trending"`
}

type favoritesPayload struct {
	Source  string `json:"source"`
	UserID  *int64 `json:"userId,string"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/trending", trendingProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products/favorites", favoriteProducts)

	webserver.AdminGET("/products", adminListProducts)
	webserver.AdminPOST("/products", adminCreateProduct)
	webserver.AdminPUT("/products/:id", adminUpdateProduct)
	webserver.AdminDELETE("/products/:id", adminDeleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	filter := catalog.ProductFilter{
		Query:  strings.TrimSpace(c.QueryParam("q")),
		Status: "enabled",
	}
	if v := c.QueryParam("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.CategoryID = id
		}
	}

	result, err := catalogSvc.GetProducts(c.Request().Context(), catalog.ProductQuery{
		Filter:   filter,
		Sort:     catalog.Sort{Field: c.QueryParam("sort"), Order: c.QueryParam("order")},
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", nil)
	}
	return ok(c, result)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := catalogSvc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	locale := requestLocale(c)
	return ok(c, map[string]interface{}{
		"product":     p,
		"name":        settings.ResolveLocalized(p.Names, locale),
		"description": settings.ResolveLocalized(p.Descriptions, locale),
	})
}

func favoriteProducts(c echo.Context) error {
	var payload favoritesPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse favorites query", nil)
	}

	result, err := catalogSvc.GetFavoriteProducts(c.Request().Context(), catalog.FavoritesQuery{
		Source:   payload.Source,
		UserID:   payload.UserID,
		Page:     payload.Page,
		PageSize: payload.PerPage,
	})
	switch {
	case errors.Is(err, catalog.ErrUserRequired):
		return fail(c, http.StatusBadRequest, "USER_REQUIRED", "user_favorites source requires a user", nil)
	case errors.Is(err, catalog.ErrUnknownSource):
		return fail(c, http.StatusBadRequest, "UNKNOWN_SOURCE", "Unknown favorites source", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query favorites", nil)
	}
	return ok(c, result)
}

func trendingProducts(c echo.Context) error {
	n := 10
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 50 {
		n = v
	}
	entries := analyticsSvc.Trending(n)
	ids := make([]int64, 0, len(entries))
	scores := make(map[int64]float64, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
		scores[e.ProductID] = e.TrendScore
	}
	products, err := catalogSvc.HydrateBoard(c.Request().Context(), ids)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load trending products", nil)
	}
	out := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		out = append(out, map[string]interface{}{
			"product":     p,
			"trend_score": scores[p.ID],
		})
	}
	return ok(c, out)
}

func adminListProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"slug":       "slug",
		"price":      "price",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, found := allowed[sortField]
	if !found || sortCol == "" {
		sortCol = "id"
	}

	db := webserver.GetDB(c).Model(&domain.Product{})
	if q != "" {
		db = db.Where("slug ILIKE ? OR names::text ILIKE ?", "%"+q+"%", "%"+q+"%")
	}
	if v := c.QueryParam("status"); v != "" {
		db = db.Where("status = ?", v)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func adminCreateProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Slug = strings.TrimSpace(payload.Slug)
	if payload.Slug == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Slug is required", nil)
	}
	if len(payload.Names) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "At least one localized name is required", nil)
	}
	if payload.Price != nil && *payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
	}

	status := payload.Status
	if status == "" {
		status = common.ENABLED
	}

	now := time.Now()
	p := domain.Product{
		ID:           common.UUIDint64(),
		CategoryID:   payload.CategoryID,
		Slug:         payload.Slug,
		Names:        datatypes.JSONMap(payload.Names),
		Descriptions: datatypes.JSONMap(payload.Descriptions),
		Image:        strings.TrimSpace(payload.Image),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if payload.Price != nil {
		p.Price = *payload.Price
	}
	if payload.Featured != nil {
		p.Featured = *payload.Featured
	}
	if payload.Popular != nil {
		p.Popular = *payload.Popular
	}
	if payload.Trending != nil {
		p.Trending = *payload.Trending
	}
	if err := webserver.GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	auditLog(c, "product.create", fmt.Sprintf("created product %s (%d)", p.Slug, p.ID))
	return ok(c, p)
}

// productUpdates builds a partial update map: absent payload fields
// leave the stored columns untouched.
func productUpdates(payload productPayload) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if s := strings.TrimSpace(payload.Slug); s != "" {
		updates["slug"] = s
	}
	if len(payload.Names) > 0 {
		updates["names"] = datatypes.JSONMap(payload.Names)
	}
	if len(payload.Descriptions) > 0 {
		updates["descriptions"] = datatypes.JSONMap(payload.Descriptions)
	}
	if payload.CategoryID > 0 {
		updates["category_id"] = payload.CategoryID
	}
	if payload.Price != nil {
		updates["price"] = *payload.Price
	}
	if payload.Image != "" {
		updates["image"] = strings.TrimSpace(payload.Image)
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Featured != nil {
		updates["featured"] = *payload.Featured
	}
	if payload.Popular != nil {
		updates["popular"] = *payload.Popular
	}
	if payload.Trending != nil {
		updates["trending"] = *payload.Trending
	}
	return updates
}

func adminUpdateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := webserver.GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if payload.Price != nil && *payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be >= 0", nil)
	}

	if err := webserver.GetDB(c).Model(&p).Updates(productUpdates(payload)).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	webserver.GetDB(c).Where("id = ?", id).First(&p)
	auditLog(c, "product.update", fmt.Sprintf("updated product %d", id))
	return ok(c, p)
}

func adminDeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	db := webserver.GetDB(c)
	if err := db.Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	// cascade the analytics and favorites rows owned by this product
	db.Where("product_id = ?", id).Delete(&domain.ProductPopularity{})
	db.Where("product_id = ?", id).Delete(&domain.UserFavorite{})
	db.Where("product_id = ?", id).Delete(&domain.ProductIngredient{})
	db.Where("product_id = ?", id).Delete(&domain.ProductExtra{})
	analyticsSvc.Leaderboard().Remove(id)
	auditLog(c, "product.delete", fmt.Sprintf("deleted product %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
