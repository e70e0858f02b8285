package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/larose/hotel-backoffice/internal/config"
    "github.com/larose/hotel-backoffice/internal/handler"    // import the handlers that implement business logic
    "github.com/larose/hotel-backoffice/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// Handlers bundles the handler set the routes are built from.
type Handlers struct {
    Bookings     *handler.BookingHandler
    Transactions *handler.TransactionHandler
    Payments     *handler.PaymentHandler
    Services     *handler.BookingServiceHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the payment gateway
// callback.  The callback is unauthenticated because the gateway cannot
// carry our JWTs; its idempotency guards make replays harmless.
func RegisterRoutes(e *echo.Echo, h Handlers) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
    e.POST("/v1/payments/callback", h.Payments.Callback)
}

// RegisterAPI registers the authenticated booking lifecycle routes.  All
// endpoints require a valid access token issued by the auth service;
// staff-only endpoints additionally require the ADMIN role.  When a
// Redis client is available a distributed token bucket rate limiter is
// applied in front of the group.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
    v1 := e.Group("/v1")
    v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    v1.Use(middleware.JWTAuth(jwtSecret))
    v1.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))

    // Booking lifecycle.
    v1.POST("/bookings", h.Bookings.Create)
    v1.GET("/bookings/:id", h.Bookings.Get)
    v1.PUT("/bookings/:id", h.Bookings.Update)
    v1.POST("/bookings/:id/cancel", h.Bookings.Cancel)
    v1.GET("/my-bookings", h.Bookings.ListMine)

    // Payments.
    v1.POST("/transactions", h.Transactions.Create)
    v1.GET("/bookings/:id/transaction", h.Transactions.GetByBooking)
    v1.POST("/payments/url", h.Payments.CreatePaymentURL)

    // Additional services billed on top of the room price.
    v1.GET("/bookings/:id/services", h.Services.List)
    v1.POST("/bookings/:id/services", h.Services.Add)
    v1.PATCH("/booking-services/:id", h.Services.UpdateQuantity)
    v1.DELETE("/booking-services/:id", h.Services.Delete)

    // Staff-only surface: forced status changes, soft removal, override
    // cancellation and manual transaction settlement.
    admin := v1.Group("", middleware.RequireRole("ADMIN"))
    admin.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)
    admin.DELETE("/bookings/:id", h.Bookings.SoftDelete)
    admin.POST("/admin/bookings/:id/cancel", h.Bookings.AdminCancel)
    admin.PATCH("/transactions/:id/status", h.Transactions.UpdateStatus)
}
