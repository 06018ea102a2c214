package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/lacarte-io/lacarte/internal/domain"
	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/internal/webserver"
)

type productCSVRow struct {
	ID        int64   `csv:"id"`
	Slug      string  `csv:"slug"`
	Name      string  `csv:"name"`
	Category  int64   `csv:"category_id"`
	Price     float64 `csv:"price"`
	Status    string  `csv:"status"`
	Featured  bool    `csv:"featured"`
	CreatedAt string  `csv:"created_at"`
}

type viewCSVRow struct {
	ID        int64  `csv:"id"`
	ProductID int64  `csv:"product_id"`
	UserID    string `csv:"user_id"`
	SessionID string `csv:"session_id"`
	IPAddress string `csv:"ip_address"`
	ViewedAt  string `csv:"viewed_at"`
}

func registerExportRoutes() {
	webserver.AdminGET("/export/products.csv", exportProductsCSV)
	webserver.AdminGET("/export/views.csv", exportViewsCSV)
}

func writeCSV(c echo.Context, filename string, rows interface{}) error {
	out, err := gocsv.MarshalString(rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render CSV", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

func exportProductsCSV(c echo.Context) error {
	var products []domain.Product
	if err := webserver.GetDB(c).Order("id ASC").Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	locale := requestLocale(c)
	rows := make([]productCSVRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productCSVRow{
			ID:        p.ID,
			Slug:      p.Slug,
			Name:      settings.ResolveLocalized(p.Names, locale),
			Category:  p.CategoryID,
			Price:     p.Price,
			Status:    p.Status,
			Featured:  p.Featured,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}
	auditLog(c, "export.products", "exported product catalog CSV")
	return writeCSV(c, "products.csv", rows)
}

func exportViewsCSV(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err.Error())
	}
	views, err := analyticsSvc.ListViews(c.Request().Context(), from, to, 100000)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query views", nil)
	}
	rows := make([]viewCSVRow, 0, len(views))
	for _, v := range views {
		userID := ""
		if v.UserID != nil {
			userID = strconv.FormatInt(*v.UserID, 10)
		}
		rows = append(rows, viewCSVRow{
			ID:        v.ID,
			ProductID: v.ProductID,
			UserID:    userID,
			SessionID: v.SessionID,
			IPAddress: v.IPAddress,
			ViewedAt:  v.ViewedAt.Format(time.RFC3339),
		})
	}
	auditLog(c, "export.views", "exported view log CSV")
	return writeCSV(c, "views.csv", rows)
}
