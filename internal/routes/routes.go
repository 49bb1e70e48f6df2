package routes

import (
	"time"

	"github.com/codeversity/backend/internal/config"
	"github.com/codeversity/backend/internal/handlers"
	"github.com/codeversity/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	planHandler *handlers.PlanHandler,
	paymentHandler *handlers.PaymentHandler,
	membershipHandler *handlers.MembershipHandler,
	assistantHandler *handlers.AssistantHandler,
	webhookHandler *handlers.WebhookHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", handlers.Health)

	// Public plan catalog
	api.Get("/plans", planHandler.List)
	api.Get("/plans/:id", planHandler.Get)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Checkout and verification (JWT required)
	api.Post("/payments/razorpay/create-order", middleware.JWTProtected(cfg), paymentHandler.CreateOrder)
	api.Post("/payments/razorpay/verify", middleware.JWTProtected(cfg), paymentHandler.Verify)
	api.Post("/payments/stripe/create-intent", middleware.JWTProtected(cfg), paymentHandler.CreateIntent)

	// Membership self-service (JWT required)
	api.Get("/memberships", middleware.JWTProtected(cfg), membershipHandler.Get)
	api.Post("/memberships/upgrade", middleware.JWTProtected(cfg), membershipHandler.Upgrade)
	api.Post("/memberships/cancel", middleware.JWTProtected(cfg), membershipHandler.Cancel)

	// AI tutor (JWT required; entitlement enforced in the service)
	api.Post("/assistant/query", middleware.JWTProtected(cfg), assistantHandler.Query)

	// Admin panel (JWT + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/plans", planHandler.ListAll)
	admin.Post("/plans", planHandler.Create)
	admin.Put("/plans/:id", planHandler.Update)
	admin.Delete("/plans/:id", planHandler.Delete)
	admin.Get("/payments", paymentHandler.ListAll)
	admin.Post("/payments/:id/refund", paymentHandler.Refund)
	admin.Put("/settings/:key", settingsHandler.Upsert)
	admin.Delete("/settings/:key", settingsHandler.Delete)

	// Webhooks — authenticated by gateway signatures, not JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/razorpay", webhookHandler.HandleRazorpay)
	webhooks.Post("/stripe", webhookHandler.HandleStripe)
}
