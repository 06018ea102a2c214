package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRangeDefaults(t *testing.T) {
	c, _ := newTestContext(t, "/admin/analytics/views")
	from, to, err := parseDateRange(c)
	require.NoError(t, err)
	assert.InDelta(t, 7*24, to.Sub(from).Hours(), 1)
}

func TestParseDateRangeRejectsGarbage(t *testing.T) {
	c, _ := newTestContext(t, "/admin/analytics/views?from=not-a-date")
	_, _, err := parseDateRange(c)
	require.Error(t, err)
}

func TestAdminMetricsSeriesEmptyStore(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/analytics/metrics/product_views", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("name")
	c.SetParamValues("product_views")

	require.NoError(t, adminMetricsSeries(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "product_views", data["metric"])
	assert.Empty(t, data["points"])
}
