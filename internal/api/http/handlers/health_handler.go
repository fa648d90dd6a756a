package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/observability"
)

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes. Required
// dependencies gate readiness; optional ones are only reported.
type HealthHandler struct {
	serviceName string
	version     string
	required    map[string]Pinger
	optional    map[string]Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, required, optional map[string]Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		required:    required,
		optional:    optional,
		metrics:     metrics,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return ok(c, fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, dep := range h.required {
		if err := dep.Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
		} else {
			depStatus[name] = "ok"
		}
	}
	for name, dep := range h.optional {
		if err := dep.Ping(ctx); err != nil {
			depStatus[name] = "degraded: " + err.Error()
		} else {
			depStatus[name] = "ok"
		}
	}

	if ready {
		return ok(c, fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Response{
		Success: false,
		Meta:    fiber.Map{"dependencies": depStatus},
		Errors: []dto.ErrorItem{{
			Code:    "DEPENDENCY_UNAVAILABLE",
			Message: "one or more dependencies unavailable",
		}},
	})
}

// Metrics reports in-process request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	if h.metrics == nil {
		return ok(c, observability.MetricsSnapshot{})
	}
	return ok(c, h.metrics.Snapshot())
}
