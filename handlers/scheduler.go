package handlers

import (
	"errors"
	"net/http"

	"giftmeet/models"
	"giftmeet/services/scheduler"
	"giftmeet/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SchedulerHandler exposes the booking session flow over HTTP.
type SchedulerHandler struct {
	Service scheduler.SchedulerService
	Logger  *zap.Logger
}

func NewSchedulerHandler(svc scheduler.SchedulerService, logger *zap.Logger) *SchedulerHandler {
	return &SchedulerHandler{Service: svc, Logger: logger}
}

// sessionView is the session plus the derived data the client renders:
// the month grid, date sets under the current filter, the selected date's
// slots, and per-host aggregates.
func sessionView(session *models.BookingSession) gin.H {
	view := gin.H{
		"session":        session,
		"calendarGrid":   scheduler.CalendarGrid(session.ViewedMonth),
		"scheduledDates": scheduler.ScheduledDates(session.Hosts, session.HostFilter),
		"openDates":      scheduler.OpenDates(session.Hosts, session.HostFilter),
		"hostAggregates": scheduler.HostAggregates(session.Hosts),
	}
	if session.SelectedDate != "" {
		view["slots"] = scheduler.AllSlotsForDate(session.Hosts, session.HostFilter, session.SelectedDate)
	}
	return view
}

// authorizedSession loads the session from the path parameter and verifies
// it belongs to the authenticated recipient. Every session endpoint goes
// through here: a sessionID alone never grants access to another
// recipient's session.
func (h *SchedulerHandler) authorizedSession(c *gin.Context) (*models.BookingSession, bool) {
	session, err := h.Service.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondSchedulerError(c, err)
		return nil, false
	}
	if session.RecipientID != c.GetString("recipientID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "session belongs to another recipient"})
		return nil, false
	}
	return session, true
}

// respondSchedulerError maps typed scheduler failures onto HTTP statuses.
func respondSchedulerError(c *gin.Context, err error) {
	var schedErr *scheduler.SchedulerError
	if errors.As(err, &schedErr) {
		status := http.StatusBadRequest
		switch schedErr {
		case scheduler.ErrSessionNotFound:
			status = http.StatusNotFound
		case scheduler.ErrInvalidPhase, scheduler.ErrBookingInFlight:
			status = http.StatusConflict
		default:
			if schedErr.Code == "bookingFailed" {
				status = http.StatusConflict
			}
		}
		c.JSON(status, gin.H{"error": schedErr.Message, "code": schedErr.Code, "retryable": schedErr.Retryable})
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}

// OpenSessionHandler opens a scheduler session for the authenticated
// recipient against the requested campaign.
func (h *SchedulerHandler) OpenSessionHandler(c *gin.Context) {
	var input struct {
		CampaignID string `json:"campaignId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	recipientID := c.GetString("recipientID")
	session, err := h.Service.OpenSession(c.Request.Context(), input.CampaignID, recipientID)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(session))
}

// GetSessionHandler returns the current session view.
func (h *SchedulerHandler) GetSessionHandler(c *gin.Context) {
	session, ok := h.authorizedSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionView(session))
}

// SetHostFilterHandler changes the host filter ("all" or a hostId).
func (h *SchedulerHandler) SetHostFilterHandler(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	var input struct {
		HostID string `json:"hostId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.SetHostFilter(c.Request.Context(), c.Param("sessionID"), input.HostID)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(session))
}

// SelectDateHandler selects (or clears) the calendar date.
func (h *SchedulerHandler) SelectDateHandler(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	var input struct {
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.SelectDate(c.Request.Context(), c.Param("sessionID"), input.Date)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(session))
}

// SelectSlotHandler selects a slot on the currently selected date.
func (h *SchedulerHandler) SelectSlotHandler(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	var input struct {
		HostID string `json:"hostId" binding:"required"`
		SlotID string `json:"slotId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.SelectSlot(c.Request.Context(), c.Param("sessionID"), input.HostID, input.SlotID)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(session))
}

// NavigateMonthHandler moves the viewed month cursor.
func (h *SchedulerHandler) NavigateMonthHandler(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	var input struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.NavigateMonth(c.Request.Context(), c.Param("sessionID"), input.Direction)
	if err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(session))
}

// ConfirmBookingHandler finalizes the booking for the current selection.
// A rejected attempt returns the refreshed session alongside the error so
// the client can surface the inline message and allow a retry.
func (h *SchedulerHandler) ConfirmBookingHandler(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	session, confirmation, err := h.Service.ConfirmBooking(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		var schedErr *scheduler.SchedulerError
		if errors.As(err, &schedErr) && schedErr.Code == "bookingFailed" && session != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":     schedErr.Message,
				"code":      schedErr.Code,
				"retryable": schedErr.Retryable,
				"session":   session,
			})
			return
		}
		respondSchedulerError(c, err)
		return
	}

	h.Logger.Info("booking confirmed",
		zap.String("bookingID", confirmation.BookingID),
		zap.String("campaignID", confirmation.CampaignID),
		zap.String("recipientID", confirmation.RecipientID))

	c.JSON(http.StatusOK, gin.H{
		"booking": confirmation,
		"session": session,
	})
}

// CloseSessionHandler discards the session without touching the schedule
// store.
func (h *SchedulerHandler) CloseSessionHandler(c *gin.Context) {
	if _, ok := h.authorizedSession(c); !ok {
		return
	}

	if err := h.Service.CloseSession(c.Request.Context(), c.Param("sessionID")); err != nil {
		respondSchedulerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
