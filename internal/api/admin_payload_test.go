package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	require.NoError(t, c.Bind(out))
}

func TestProductUpdatesKeepsOmittedPrice(t *testing.T) {
	var payload productPayload
	bindJSON(t, `{"status":"disabled"}`, &payload)

	updates := productUpdates(payload)
	assert.Equal(t, "disabled", updates["status"])
	assert.NotContains(t, updates, "price")
	assert.NotContains(t, updates, "slug")
	assert.NotContains(t, updates, "names")
	assert.NotContains(t, updates, "featured")
}

func TestProductUpdatesAppliesProvidedPrice(t *testing.T) {
	var payload productPayload
	bindJSON(t, `{"price":12.5,"featured":false}`, &payload)

	updates := productUpdates(payload)
	assert.Equal(t, 12.5, updates["price"])
	assert.Equal(t, false, updates["featured"])
}

func TestCategoryUpdatesKeepsOmittedSort(t *testing.T) {
	var payload categoryPayload
	bindJSON(t, `{"image":"/img/tapas.jpg"}`, &payload)

	updates := categoryUpdates(payload)
	assert.Equal(t, "/img/tapas.jpg", updates["image"])
	assert.NotContains(t, updates, "sort")

	bindJSON(t, `{"sort":0}`, &payload)
	assert.Equal(t, 0, categoryUpdates(payload)["sort"])
}

func TestMenuItemUpdatesKeepsOmittedSort(t *testing.T) {
	var payload menuItemPayload
	bindJSON(t, `{"path":"/contact"}`, &payload)

	updates := menuItemUpdates(payload)
	assert.Equal(t, "/contact", updates["path"])
	assert.NotContains(t, updates, "sort")
	assert.NotContains(t, updates, "external")

	bindJSON(t, `{"sort":3,"external":true}`, &payload)
	updates = menuItemUpdates(payload)
	assert.Equal(t, 3, updates["sort"])
	assert.Equal(t, true, updates["external"])
}
