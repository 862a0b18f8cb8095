package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleRepo "giftmeet/database/repository/schedule"
	"giftmeet/models"

	"go.uber.org/zap"
)

// BookingExecutor issues the at-most-once booking mutation against the
// schedule store and reconciles the session's host snapshot after the
// server confirms.
type BookingExecutor struct {
	Store  scheduleRepo.ScheduleStore
	Logger *zap.Logger
}

// Execute books the session's selected slot. Exactly one store mutation is
// issued per call; on failure the snapshot is left untouched and the error
// carries whether the recipient may retry.
func (ex *BookingExecutor) Execute(
	ctx context.Context,
	session *models.BookingSession,
	now time.Time,
) (*models.BookingConfirmation, []models.Host, error) {
	req := models.BookingRequest{
		HostID:      session.SelectedHostID,
		SlotID:      session.SelectedSlotID,
		Date:        session.SelectedDate,
		RecipientID: session.RecipientID,
		RequestedAt: now,
	}

	confirmation, err := ex.Store.BookSlot(ctx, session.CampaignID, req)
	if err != nil {
		var storeErr *scheduleRepo.StoreError
		if errors.As(err, &storeErr) {
			// A conflict means another party won the slot; the recipient
			// must re-choose, so no automatic retry here.
			retryable := storeErr == scheduleRepo.ErrSlotTaken
			return nil, nil, NewBookingError(storeErr.Message, retryable)
		}
		ex.Logger.Error("booking transaction failed",
			zap.String("sessionID", session.SessionID),
			zap.String("campaignID", session.CampaignID),
			zap.Error(err))
		return nil, nil, NewBookingError("booking could not be completed, please try again", true)
	}

	// Optimistic local merge mirroring exactly what the server just did.
	updatedHosts, err := MarkSlotBooked(
		session.Hosts,
		confirmation.HostID,
		confirmation.Date,
		confirmation.SlotID,
		confirmation.RecipientID,
		confirmation.BookedAt,
	)
	if err != nil {
		// The store accepted the booking; a merge miss only means the local
		// snapshot was stale. Log and carry on with the confirmed state.
		ex.Logger.Warn("booked slot missing from session snapshot",
			zap.String("sessionID", session.SessionID),
			zap.String("slotID", confirmation.SlotID),
			zap.Error(err))
		updatedHosts = session.Hosts
	}

	return confirmation, updatedHosts, nil
}

// MarkSlotBooked is a pure update-at-path reducer over the host list keyed
// by (hostID, date, slotID). It returns a new host list with the target
// slot booked; the input is never mutated.
func MarkSlotBooked(
	hosts []models.Host,
	hostID, date, slotID, recipientID string,
	bookedAt time.Time,
) ([]models.Host, error) {
	updated := make([]models.Host, len(hosts))
	found := false

	for i, host := range hosts {
		updated[i] = host
		if host.HostID != hostID {
			continue
		}

		schedule := make([]models.ScheduleDay, len(host.Schedule))
		for j, day := range host.Schedule {
			schedule[j] = day
			if day.Date != date {
				continue
			}

			slots := make([]models.Slot, len(day.Slots))
			copy(slots, day.Slots)
			for k := range slots {
				if slots[k].SlotID != slotID {
					continue
				}
				at := bookedAt
				slots[k].IsBooked = true
				slots[k].RecipientID = recipientID
				slots[k].BookedAt = &at
				found = true
			}
			schedule[j].Slots = slots
		}
		updated[i].Schedule = schedule
	}

	if !found {
		return nil, fmt.Errorf("slot %s not found for host %s on %s", slotID, hostID, date)
	}
	return updated, nil
}
