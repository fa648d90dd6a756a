package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/http/handlers"
	"github.com/spec-kit/storefront-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	APIPrefix     string
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Products      *handlers.ProductsHandler
	Wishlist      *handlers.WishlistHandler
	Authenticator *auth.Authenticator
	LoginLimiter  *LoginLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := app.Group(prefix)
	authn := cfg.Authenticator

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.LoginLimiter.Handle, cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", authn.OptionalAuth, cfg.Auth.Logout)
	authGroup.Get("/me", authn.RequireAuth, cfg.Auth.Me)

	api.Get("/products", authn.OptionalAuth, cfg.Products.List)
	api.Get("/products/slug/:slug", authn.OptionalAuth, cfg.Products.GetBySlug)
	api.Get("/products/:id/related", authn.OptionalAuth, cfg.Products.Related)
	api.Get("/products/:id", authn.OptionalAuth, cfg.Products.Get)
	api.Get("/categories", cfg.Products.Categories)
	api.Get("/search", authn.OptionalAuth, cfg.Products.Search)

	wishlist := api.Group("/wishlist", authn.RequireAuth)
	wishlist.Get("", cfg.Wishlist.List)
	wishlist.Post("", cfg.Wishlist.Add)
	wishlist.Delete("", cfg.Wishlist.Clear)
	wishlist.Get("/check/:product_id", cfg.Wishlist.Check)
	wishlist.Delete("/:product_id", cfg.Wishlist.Remove)
}
