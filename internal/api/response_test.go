package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacarte-io/lacarte/internal/auth"
)

func newTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestParsePaginationDefaults(t *testing.T) {
	c, _ := newTestContext(t, "/api/products")
	page, pageSize := parsePagination(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)
}

func TestParsePaginationParams(t *testing.T) {
	c, _ := newTestContext(t, "/api/products?page=3&perPage=50")
	page, pageSize := parsePagination(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	c, _ = newTestContext(t, "/api/products?page=2&pageSize=10")
	page, pageSize = parsePagination(c)
	assert.Equal(t, 2, page)
	assert.Equal(t, 10, pageSize)
}

func TestParsePaginationRejectsInvalid(t *testing.T) {
	c, _ := newTestContext(t, "/api/products?page=-1&perPage=9999")
	page, pageSize := parsePagination(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	// cap agrees with the catalog service
	c, _ = newTestContext(t, "/api/products?perPage=200")
	_, pageSize = parsePagination(c)
	assert.Equal(t, 200, pageSize)

	c, _ = newTestContext(t, "/api/products?perPage=201")
	_, pageSize = parsePagination(c)
	assert.Equal(t, 20, pageSize)
}

func TestOkShape(t *testing.T) {
	c, rec := newTestContext(t, "/")
	require.NoError(t, ok(c, map[string]interface{}{"hello": "world"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "world", data["hello"])
}

func TestFailShape(t *testing.T) {
	c, rec := newTestContext(t, "/")
	require.NoError(t, fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errBody["code"])
	assert.Equal(t, "Product not found", errBody["message"])
	_, hasDetail := errBody["detail"]
	assert.False(t, hasDetail)
}

func TestPagedTotalPages(t *testing.T) {
	cases := []struct {
		total      int64
		pageSize   int
		totalPages float64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{45, 20, 3},
	}
	for _, tc := range cases {
		c, rec := newTestContext(t, "/")
		require.NoError(t, paged(c, []string{}, tc.total, 1, tc.pageSize))
		body := decodeBody(t, rec)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, tc.totalPages, data["total_pages"], "total=%d", tc.total)
	}
}

func TestRequestLocale(t *testing.T) {
	c, _ := newTestContext(t, "/?locale=en")
	assert.Equal(t, "en", requestLocale(c))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9")
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "de", requestLocale(c))

	c, _ = newTestContext(t, "/")
	assert.Equal(t, "fr", requestLocale(c))
}

func TestAuthStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusOK, authStatus(auth.Ok(nil)))

	cases := map[string]int{
		auth.CodeInvalidCredentials: http.StatusUnauthorized,
		auth.CodeTokenExpired:       http.StatusUnauthorized,
		auth.CodeTokenInvalid:       http.StatusUnauthorized,
		auth.CodeAccountDisabled:    http.StatusForbidden,
		auth.CodeUserNotFound:       http.StatusNotFound,
		auth.CodeEmailExists:        http.StatusConflict,
		auth.CodeTooManyAttempts:    http.StatusTooManyRequests,
		auth.CodeWeakPassword:       http.StatusBadRequest,
		auth.CodeInvalidInput:       http.StatusBadRequest,
		auth.CodeInternal:           http.StatusInternalServerError,
	}
	for code, status := range cases {
		res := auth.Fail(auth.NewError(code, "x"))
		assert.Equal(t, status, authStatus(res), code)
	}
}
