package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lacarte-io/lacarte/internal/analytics"
	"github.com/lacarte-io/lacarte/internal/webserver"
)

var trackedViews = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lacarte_tracked_views_total",
	Help: "Product view events received, split by debounce outcome.",
}, []string{"counted"})

type trackViewPayload struct {
	UserID *int64 `json:"userId,string"`
}

func registerTrackingRoutes() {
	webserver.ApiPOST("/products/:id/view", trackProductView)
	webserver.ApiGET("/products/:id/view-count", productViewCount)
}

// trackProductView logs one view for a product. The view row is
// committed before the response; the popularity recompute runs detached
// and its outcome never changes the response.
func trackProductView(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload trackViewPayload
	_ = c.Bind(&payload)

	sessionID := webserver.SessionID(c)
	if !debounceStore.Allow(sessionID, id) {
		// repeat view within the debounce window, acknowledged but not counted
		trackedViews.WithLabelValues("false").Inc()
		return ok(c, map[string]interface{}{"counted": false})
	}

	view, err := analyticsSvc.TrackView(c.Request().Context(), analytics.TrackViewInput{
		ProductID: id,
		UserID:    payload.UserID,
		SessionID: sessionID,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	switch {
	case errors.Is(err, analytics.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record view", nil)
	}
	trackedViews.WithLabelValues("true").Inc()
	return ok(c, map[string]interface{}{
		"counted":   true,
		"view_id":   view.ID,
		"viewed_at": view.ViewedAt,
	})
}

func productViewCount(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	count, err := analyticsSvc.ViewCount(c.Request().Context(), id)
	switch {
	case errors.Is(err, analytics.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count views", nil)
	}
	return ok(c, map[string]interface{}{
		"product_id": id,
		"view_count": count,
	})
}
