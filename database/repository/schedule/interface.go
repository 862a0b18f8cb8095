package scheduleRepo

import (
	"context"

	"giftmeet/models"
)

// ScheduleStore is the authoritative holder of campaign schedules. The
// scheduler core consumes exactly two operations: GetCampaignSchedule to
// populate a session, and BookSlot as the sole mutating call. The remaining
// methods serve the campaign admin surface.
type ScheduleStore interface {
	GetCampaignSchedule(ctx context.Context, campaignID string) (*models.Campaign, error)
	BookSlot(ctx context.Context, campaignID string, req models.BookingRequest) (*models.BookingConfirmation, error)

	UpsertCampaign(ctx context.Context, campaign *models.Campaign) error
	ReplaceHosts(ctx context.Context, campaignID string, hosts []models.Host) error
	FindBookingForRecipient(ctx context.Context, campaignID, recipientID string) (*models.ExistingBooking, error)
}

// Sentinel booking rejections. Both re-validate conditions the session
// already checked client-side; under concurrent bookings the store's answer
// is the authoritative one (first write wins).
var (
	ErrCampaignNotFound = &StoreError{Code: "campaignNotFound", Message: "campaign not found"}
	ErrSlotNotFound     = &StoreError{Code: "slotNotFound", Message: "slot not found on the requested host and date"}
	ErrSlotTaken        = &StoreError{Code: "slotTaken", Message: "slot was just booked by someone else"}
	ErrAlreadyBooked    = &StoreError{Code: "alreadyBooked", Message: "recipient already holds a booking in this campaign"}
)

// StoreError is a typed rejection from the schedule store.
type StoreError struct {
	Code    string
	Message string
}

func (e *StoreError) Error() string {
	return e.Code + ": " + e.Message
}
