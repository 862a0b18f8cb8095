package routes

import (
	"net/http"
	"time"

	"giftmeet/handlers"
	"giftmeet/middleware"
	"giftmeet/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSchedulerRoutes sets up the endpoints for the booking scheduler.
func RegisterSchedulerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/scheduler")
	{
		api.Use(middleware.JWTAuthRecipientMiddleware())
		api.POST("/session", hb.OpenSession)
		api.GET("/session/:sessionID", hb.GetSession)
		api.PUT("/session/:sessionID/filter", hb.SetHostFilter)
		api.PUT("/session/:sessionID/date", hb.SelectDate)
		api.PUT("/session/:sessionID/slot", hb.SelectSlot)
		api.PUT("/session/:sessionID/month", hb.NavigateMonth)
		api.POST("/session/:sessionID/confirm", hb.ConfirmBooking)
		api.DELETE("/session/:sessionID", hb.CloseSession)
	}
}

// RegisterCampaignRoutes sets up the campaign schedule admin endpoints.
func RegisterCampaignRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/campaigns")
	{
		api.Use(middleware.JWTAuthAdminMiddleware())
		api.PUT("/:campaignID", hb.UpsertCampaign)
		api.PUT("/:campaignID/hosts", hb.ReplaceCampaignHosts)
		api.GET("/:campaignID/schedule", hb.GetCampaignSchedule)
		api.GET("/:campaignID/hosts/summary", hb.GetHostSummary)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterSchedulerRoutes(r, hb)
	RegisterCampaignRoutes(r, hb)
	RegisterHealthRoute(r)
}
