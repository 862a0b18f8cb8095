package scheduler

import (
	"context"
	"errors"
	"time"

	"giftmeet/models"
	"giftmeet/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpenSession creates a new booking session for a recipient, fetches the
// campaign schedule, and resolves the initial phase. A schedule-fetch
// failure yields a loadError session rather than an error: the client shows
// a blocking message with a manual close. If the recipient already holds a
// booking in the campaign, the session opens in alreadyBooked and the
// booking surface stays suppressed.
func (s *DefaultSchedulerService) OpenSession(ctx context.Context, campaignID, recipientID string) (*models.BookingSession, error) {
	now := time.Now()
	session := &models.BookingSession{
		SessionID:   uuid.New().String(),
		CampaignID:  campaignID,
		RecipientID: recipientID,
		Phase:       models.PhaseLoading,
		HostFilter:  models.HostFilterAll,
		ViewedMonth: models.MonthCursor{Year: now.Year(), Month: now.Month()},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	campaign, err := s.Store.GetCampaignSchedule(ctx, campaignID)
	if err != nil {
		utils.GetLogger().Error("failed to load campaign schedule",
			zap.String("campaignID", campaignID), zap.Error(err))
		session.Phase = models.PhaseLoadError
		session.LastError = "could not load the campaign schedule"
		if saveErr := s.Sessions.Save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		return session, nil
	}

	session.CampaignName = campaign.Name
	session.Hosts = campaign.MeetingHosts

	existing := FindExistingBooking(campaign.MeetingHosts, recipientID)
	if existing == nil {
		// The snapshot scan can miss a booking committed between the
		// schedule fetch and now; the store's booking record is
		// authoritative.
		if found, lookupErr := s.Store.FindBookingForRecipient(ctx, campaignID, recipientID); lookupErr == nil && found != nil {
			existing = found
		}
	}
	if existing != nil {
		session.Phase = models.PhaseAlreadyBooked
		session.ExistingBooking = existing
		session.ViewedMonth = CursorFor(existing.Date, now)
	} else {
		session.Phase = models.PhaseReady
		if dates := ScheduledDates(campaign.MeetingHosts, models.HostFilterAll); len(dates) > 0 {
			session.ViewedMonth = CursorFor(dates[0], now)
		}
	}

	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns the current session state.
func (s *DefaultSchedulerService) GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	return s.Sessions.Get(ctx, sessionID)
}

// SetHostFilter changes the host filter. A stale date/slot selection must
// not survive a filter change, so all three selection fields are cleared —
// filtering to the same value twice produces the same cleared state.
func (s *DefaultSchedulerService) SetHostFilter(ctx context.Context, sessionID, hostFilter string) (*models.BookingSession, error) {
	session, err := s.readyFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if hostFilter != models.HostFilterAll {
		known := false
		for _, host := range session.Hosts {
			if host.HostID == hostFilter {
				known = true
				break
			}
		}
		if !known {
			return nil, NewSelectionError("unknown host filter: " + hostFilter)
		}
	}

	session.HostFilter = hostFilter
	session.SelectedDate = ""
	session.SelectedSlotID = ""
	session.SelectedHostID = ""
	return s.touch(ctx, session)
}

// SelectDate picks a date on the calendar. Changing the date clears any
// previously selected slot and host, since a slot is only valid for its
// original date. An empty date clears the selection entirely.
func (s *DefaultSchedulerService) SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSession, error) {
	session, err := s.readyFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if date != "" {
		if _, err := time.Parse(isoDate, date); err != nil {
			return nil, NewSelectionError("date must be formatted YYYY-MM-DD")
		}
	}

	if session.SelectedDate != date {
		session.SelectedSlotID = ""
		session.SelectedHostID = ""
	}
	session.SelectedDate = date
	return s.touch(ctx, session)
}

// SelectSlot picks an open slot on the currently selected date.
func (s *DefaultSchedulerService) SelectSlot(ctx context.Context, sessionID, hostID, slotID string) (*models.BookingSession, error) {
	session, err := s.readyFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.SelectedDate == "" {
		return nil, NewSelectionError("select a date before selecting a slot")
	}
	if session.HostFilter != models.HostFilterAll && session.HostFilter != hostID {
		return nil, NewSelectionError("slot does not belong to the filtered host")
	}

	host, slot := FindSlot(session.Hosts, hostID, session.SelectedDate, slotID)
	if host == nil || slot == nil {
		return nil, NewSelectionError("slot not found on the selected date")
	}
	if slot.IsBooked {
		return nil, NewSelectionError("slot is already booked")
	}

	session.SelectedSlotID = slotID
	session.SelectedHostID = hostID
	return s.touch(ctx, session)
}

// NavigateMonth moves the viewed-month cursor by one calendar month. The
// cursor is pure presentation state, so navigation is also allowed on an
// alreadyBooked session.
func (s *DefaultSchedulerService) NavigateMonth(ctx context.Context, sessionID, direction string) (*models.BookingSession, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Phase != models.PhaseReady && session.Phase != models.PhaseAlreadyBooked {
		return nil, ErrInvalidPhase
	}

	switch direction {
	case "next":
		session.ViewedMonth = NextMonth(session.ViewedMonth)
	case "prev":
		session.ViewedMonth = PrevMonth(session.ViewedMonth)
	default:
		return nil, NewSelectionError(`direction must be "prev" or "next"`)
	}
	return s.touch(ctx, session)
}

// ConfirmBooking issues the booking transaction for the current selection.
// The session moves ready → booking → bookingSuccess, or back to ready with
// the error message attached so the recipient can retry. The persisted
// booking phase rejects a second confirm while one is in flight.
func (s *DefaultSchedulerService) ConfirmBooking(ctx context.Context, sessionID string) (*models.BookingSession, *models.BookingConfirmation, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Phase == models.PhaseBooking {
		return session, nil, ErrBookingInFlight
	}
	if session.Phase != models.PhaseReady {
		return session, nil, ErrInvalidPhase
	}
	if !session.HasSelection() {
		return session, nil, NewSelectionError("a date, slot, and host must all be selected")
	}
	if _, slot := FindSlot(session.Hosts, session.SelectedHostID, session.SelectedDate, session.SelectedSlotID); slot == nil || slot.IsBooked {
		return session, nil, NewSelectionError("selected slot is no longer available")
	}

	session.Phase = models.PhaseBooking
	session.LastError = ""
	if _, err := s.touch(ctx, session); err != nil {
		return session, nil, err
	}

	confirmation, updatedHosts, execErr := s.Executor.Execute(ctx, session, time.Now())
	if execErr != nil {
		session.Phase = models.PhaseReady
		var schedErr *SchedulerError
		if errors.As(execErr, &schedErr) {
			session.LastError = schedErr.Message
		} else {
			session.LastError = "booking failed"
		}
		if _, saveErr := s.touch(ctx, session); saveErr != nil {
			return session, nil, saveErr
		}
		return session, nil, execErr
	}

	session.Phase = models.PhaseBookingSuccess
	session.Hosts = updatedHosts
	session.ExistingBooking = &models.ExistingBooking{
		HostID:    confirmation.HostID,
		HostName:  confirmation.HostName,
		SlotID:    confirmation.SlotID,
		Date:      confirmation.Date,
		StartTime: confirmation.StartTime,
		EndTime:   confirmation.EndTime,
		BookedAt:  &confirmation.BookedAt,
	}
	if _, err := s.touch(ctx, session); err != nil {
		return session, nil, err
	}

	s.notifyHost(ctx, session, confirmation)
	return session, confirmation, nil
}

// CloseSession drops the session. It never mutates the schedule store, so
// closing at any phase is safe.
func (s *DefaultSchedulerService) CloseSession(ctx context.Context, sessionID string) error {
	return s.Sessions.Delete(ctx, sessionID)
}

// notifyHost pushes a confirmation to the booked host and schedules the
// meeting reminder. Delivery failure never affects the booking outcome.
func (s *DefaultSchedulerService) notifyHost(ctx context.Context, session *models.BookingSession, confirmation *models.BookingConfirmation) {
	if s.NotificationSvc == nil {
		return
	}
	// Resolve by host id alone: the snapshot may predate the booked day
	// when the optimistic merge missed, but the host entry is still there.
	var host *models.Host
	for i := range session.Hosts {
		if session.Hosts[i].HostID == confirmation.HostID {
			host = &session.Hosts[i]
			break
		}
	}
	if host == nil {
		return
	}
	if err := s.NotificationSvc.NotifyBookingConfirmed(ctx, *host, *confirmation); err != nil {
		utils.GetLogger().Warn("host notification failed",
			zap.String("hostID", confirmation.HostID),
			zap.String("bookingID", confirmation.BookingID),
			zap.Error(err))
	}
}

// readyFor loads a session and checks it accepts selection changes.
func (s *DefaultSchedulerService) readyFor(ctx context.Context, sessionID string) (*models.BookingSession, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Phase == models.PhaseBooking {
		return nil, ErrBookingInFlight
	}
	if session.Phase != models.PhaseReady {
		return nil, ErrInvalidPhase
	}
	return session, nil
}

func (s *DefaultSchedulerService) touch(ctx context.Context, session *models.BookingSession) (*models.BookingSession, error) {
	session.UpdatedAt = time.Now()
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
