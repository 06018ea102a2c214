package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lacarte-io/lacarte/internal/analytics"
	"github.com/lacarte-io/lacarte/internal/webserver"
	"github.com/lacarte-io/lacarte/pkg/metrics"
)

type trackOrderPayload struct {
	Amount float64 `json:"amount"`
}

func registerAnalyticsRoutes() {
	webserver.AdminGET("/analytics/summary", adminAnalyticsSummary)
	webserver.AdminGET("/analytics/views", adminAnalyticsViews)
	webserver.AdminGET("/analytics/popularity", adminAnalyticsPopularity)
	webserver.AdminGET("/analytics/metrics/:name", adminMetricsSeries)
	webserver.AdminPOST("/products/:id/orders", adminTrackOrder)
}

// parseDateRange reads from/to query parameters in any common date
// format, defaulting to the last 7 days.
func parseDateRange(c echo.Context) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)
	if v := c.QueryParam("from"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return from, to, errors.Wrap(err, "parse from")
		}
		from = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return from, to, errors.Wrap(err, "parse to")
		}
		to = t
	}
	return from, to, nil
}

func adminAnalyticsSummary(c echo.Context) error {
	summary, err := analyticsSvc.Summarize(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to aggregate analytics", nil)
	}
	return ok(c, summary)
}

func adminAnalyticsViews(c echo.Context) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err.Error())
	}
	count, err := analyticsSvc.CountViews(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count views", nil)
	}
	return ok(c, map[string]interface{}{
		"from":  from,
		"to":    to,
		"views": count,
	})
}

func adminAnalyticsPopularity(c echo.Context) error {
	entries := analyticsSvc.Trending(50)
	return ok(c, entries)
}

// adminMetricsSeries returns raw datapoints of one local gauge (view
// rate, cpu, memory) for the dashboard charts.
func adminMetricsSeries(c echo.Context) error {
	name := c.Param("name")
	from, to, err := parseDateRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err.Error())
	}
	points, err := metrics.Select(name, from.Unix(), to.Unix())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to read metric", err.Error())
	}
	out := make([]map[string]interface{}, 0, len(points))
	for _, p := range points {
		out = append(out, map[string]interface{}{
			"timestamp": p.Timestamp,
			"value":     p.Value,
		})
	}
	return ok(c, map[string]interface{}{
		"metric": name,
		"from":   from,
		"to":     to,
		"points": out,
	})
}

// adminTrackOrder feeds a completed order into the popularity pipeline.
// Called by the ordering integration when an order is confirmed.
func adminTrackOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload trackOrderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	if payload.Amount < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Amount must be >= 0", nil)
	}
	err = analyticsSvc.TrackOrder(c.Request().Context(), id, payload.Amount)
	switch {
	case errors.Is(err, analytics.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case err != nil:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record order", nil)
	}
	auditLog(c, "order.track", fmt.Sprintf("tracked order for product %d amount %.2f", id, payload.Amount))
	return ok(c, map[string]interface{}{"tracked": true})
}
