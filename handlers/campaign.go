package handlers

import (
	"errors"
	"net/http"

	scheduleRepo "giftmeet/database/repository/schedule"
	"giftmeet/models"
	"giftmeet/services/scheduler"
	"giftmeet/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CampaignHandler exposes the campaign schedule admin surface.
type CampaignHandler struct {
	Store  scheduleRepo.ScheduleStore
	Logger *zap.Logger
}

func NewCampaignHandler(store scheduleRepo.ScheduleStore, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{Store: store, Logger: logger}
}

func respondStoreError(c *gin.Context, err error) {
	var storeErr *scheduleRepo.StoreError
	if errors.As(err, &storeErr) {
		status := http.StatusConflict
		if storeErr == scheduleRepo.ErrCampaignNotFound || storeErr == scheduleRepo.ErrSlotNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": storeErr.Message, "code": storeErr.Code})
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}

// UpsertCampaignHandler creates or replaces a campaign. Setting up a new
// campaign starts here; host schedules are then managed through
// ReplaceCampaignHostsHandler.
func (h *CampaignHandler) UpsertCampaignHandler(c *gin.Context) {
	campaignID := c.Param("campaignID")
	var input struct {
		Name  string        `json:"name" binding:"required"`
		Hosts []models.Host `json:"hosts"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := validateHosts(c, input.Hosts); err != nil {
		return
	}

	campaign := &models.Campaign{
		ID:           campaignID,
		Name:         input.Name,
		MeetingHosts: input.Hosts,
	}
	if campaign.MeetingHosts == nil {
		campaign.MeetingHosts = []models.Host{}
	}

	if err := h.Store.UpsertCampaign(c.Request.Context(), campaign); err != nil {
		respondStoreError(c, err)
		return
	}

	h.Logger.Info("campaign upserted",
		zap.String("campaignID", campaignID),
		zap.Int("hosts", len(campaign.MeetingHosts)))
	c.JSON(http.StatusOK, campaign)
}

// validateHosts checks hostId uniqueness and assigns ids to slots missing
// one. It writes the error response itself and returns non-nil when the
// host list is rejected.
func validateHosts(c *gin.Context, hosts []models.Host) error {
	seen := make(map[string]bool)
	for i := range hosts {
		if hosts[i].HostID == "" {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "every host needs a hostId")
			return errInvalidHosts
		}
		if seen[hosts[i].HostID] {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "duplicate hostId: "+hosts[i].HostID)
			return errInvalidHosts
		}
		seen[hosts[i].HostID] = true

		for j := range hosts[i].Schedule {
			for k := range hosts[i].Schedule[j].Slots {
				if hosts[i].Schedule[j].Slots[k].SlotID == "" {
					hosts[i].Schedule[j].Slots[k].SlotID = uuid.New().String()
				}
			}
		}
	}
	return nil
}

var errInvalidHosts = errors.New("invalid host list")

// ReplaceCampaignHostsHandler replaces the full host schedule of an
// existing campaign. Booked slots must be carried over unchanged by the
// caller.
func (h *CampaignHandler) ReplaceCampaignHostsHandler(c *gin.Context) {
	campaignID := c.Param("campaignID")
	var input struct {
		Hosts []models.Host `json:"hosts" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := validateHosts(c, input.Hosts); err != nil {
		return
	}

	if err := h.Store.ReplaceHosts(c.Request.Context(), campaignID, input.Hosts); err != nil {
		respondStoreError(c, err)
		return
	}

	h.Logger.Info("campaign hosts replaced",
		zap.String("campaignID", campaignID),
		zap.Int("hosts", len(input.Hosts)))
	c.JSON(http.StatusOK, gin.H{"status": "updated", "hosts": len(input.Hosts)})
}

// GetCampaignScheduleHandler returns the full campaign schedule.
func (h *CampaignHandler) GetCampaignScheduleHandler(c *gin.Context) {
	campaign, err := h.Store.GetCampaignSchedule(c.Request.Context(), c.Param("campaignID"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// GetHostSummaryHandler returns per-host open-slot and scheduled-day
// counts.
func (h *CampaignHandler) GetHostSummaryHandler(c *gin.Context) {
	campaign, err := h.Store.GetCampaignSchedule(c.Request.Context(), c.Param("campaignID"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"campaignId": campaign.ID,
		"hosts":      scheduler.HostAggregates(campaign.MeetingHosts),
	})
}
