package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/observability"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as CORS, error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, corsOrigins []string) {
	if len(corsOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(corsOrigins, ","),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Authorization",
			AllowMethods:     "GET,POST,DELETE,OPTIONS",
			AllowCredentials: !containsWildcard(corsOrigins),
		}))
	}
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= http.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(ErrorResponse(domainErr))
				err = nil
			}
		}()
		return c.Next()
	}
}

// ErrorResponse renders a domain error as the response envelope. Field
// errors become one entry each; otherwise the error itself is the only entry.
func ErrorResponse(domainErr *apperrors.DomainError) dto.Response {
	items := make([]dto.ErrorItem, 0, len(domainErr.Fields)+1)
	for _, field := range domainErr.Fields {
		items = append(items, dto.ErrorItem{Code: domainErr.Code, Message: field.Message, Field: field.Field})
	}
	if len(items) == 0 {
		items = append(items, dto.ErrorItem{Code: domainErr.Code, Message: domainErr.Message})
	}
	var meta interface{}
	if len(domainErr.Details) > 0 {
		meta = domainErr.Details
	}
	return dto.Response{Success: false, Meta: meta, Errors: items}
}

// toDomainError also understands the errors fiber raises itself (unknown
// routes, bad methods, oversized bodies).
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(fiberErr.Code), " ", "_"))
		if code == "" {
			code = "HTTP_ERROR"
		}
		return &apperrors.DomainError{Code: code, Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}
	return apperrors.ToDomainError(err)
}
