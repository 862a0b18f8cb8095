package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Scheduler session endpoints.
	OpenSession    gin.HandlerFunc
	GetSession     gin.HandlerFunc
	SetHostFilter  gin.HandlerFunc
	SelectDate     gin.HandlerFunc
	SelectSlot     gin.HandlerFunc
	NavigateMonth  gin.HandlerFunc
	ConfirmBooking gin.HandlerFunc
	CloseSession   gin.HandlerFunc

	// Campaign admin endpoints.
	UpsertCampaign       gin.HandlerFunc
	ReplaceCampaignHosts gin.HandlerFunc
	GetCampaignSchedule  gin.HandlerFunc
	GetHostSummary       gin.HandlerFunc
}
