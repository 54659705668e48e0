package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"facility-booking-backend/config"
	"facility-booking-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/facilities", caching, h.ListFacilities)
		api.GET("/facilities/:facility_id", caching, h.GetFacility)
		api.GET("/facilities/:facility_id/usage", h.GetUsage)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(RequireActor())
		{
			authed.POST("/facilities", h.CreateFacility)
			authed.PATCH("/facilities/:facility_id", h.UpdateFacility)

			authed.POST("/bookings", h.CreateBooking)
			authed.GET("/bookings", h.ListBookings)
			authed.GET("/bookings/:booking_id", h.GetBooking)
			authed.POST("/bookings/:booking_id/cancel", h.CancelBooking)
			authed.POST("/bookings/:booking_id/decision", h.DecideBooking)
			authed.GET("/bookings/:booking_id/approvals", h.ListApprovals)

			authed.POST("/rules", h.CreateRule)
			authed.GET("/rules/:rule_id", h.GetRule)
			authed.GET("/rules/:rule_id/occurrences", h.ListOccurrences)
			authed.POST("/rules/:rule_id/pause", h.PauseRule)
			authed.POST("/rules/:rule_id/resume", h.ResumeRule)
			authed.POST("/rules/:rule_id/cancel", h.CancelRule)
			authed.POST("/rules/:rule_id/materialize", h.MaterializeRule)

			authed.GET("/subscriptions", h.GetSubscription)
			authed.PUT("/subscriptions", h.PutSubscription)
			authed.DELETE("/subscriptions", h.DeleteSubscription)
		}
	}

	return r
}
