package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lacarte-io/lacarte/internal/settings"
	"github.com/lacarte-io/lacarte/internal/webserver"
)

type saveSettingsPayload struct {
	Category string            `json:"category"`
	Values   map[string]string `json:"values"`
}

func registerSettingsRoutes() {
	webserver.ApiGET("/site", siteSettings)

	webserver.AdminGET("/settings/:category", adminListSettings)
	webserver.AdminPUT("/settings", adminSaveSettings)
}

// siteSettings is the public storefront bootstrap payload: site identity
// resolved for the caller's locale plus the raw multilingual maps so the
// front end can switch languages without another round trip.
func siteSettings(c echo.Context) error {
	locale := requestLocale(c)
	site := settingsMgr.Category("site")
	return ok(c, map[string]interface{}{
		"locale":         locale,
		"locales":        settings.LocaleStrings(),
		"title":          settingsMgr.LocalizedText("site", "Title", locale),
		"description":    settingsMgr.LocalizedText("site", "Description", locale),
		"address":        site["Address"],
		"phone":          site["Phone"],
		"email":          site["Email"],
		"opening_hours":  settingsMgr.LocalizedText("site", "OpeningHours", locale),
		"currency":       site["Currency"],
		"social_links":   site["SocialLinks"],
		"default_locale": settings.Locales[0].String(),
		"raw":            site,
	})
}

func adminListSettings(c echo.Context) error {
	category := c.Param("category")
	if category == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category is required", nil)
	}
	return ok(c, settingsMgr.Category(category))
}

func adminSaveSettings(c echo.Context) error {
	var payload saveSettingsPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings", err.Error())
	}
	if payload.Category == "" || len(payload.Values) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category and values are required", nil)
	}
	if err := settingsMgr.SaveAll(c.Request().Context(), payload.Category, payload.Values); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save settings", err.Error())
	}
	auditLog(c, "settings.save", fmt.Sprintf("saved %d values in %s", len(payload.Values), payload.Category))
	return ok(c, settingsMgr.Category(payload.Category))
}
