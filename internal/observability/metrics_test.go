package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/products", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/products", "GET", 200, 4*time.Millisecond)
	m.RecordError("/wishlist", "POST", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/products|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/wishlist|POST|NOT_FOUND"])
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.InDelta(t, 3.0, snap.AverageDurationMs, 0.001)

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/x", "GET", 200, time.Millisecond)
}

func TestRequestLoggerRecordsRoute(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/products/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/5", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, int64(1), m.Snapshot().Requests["/products/:id|GET|204"])
}
