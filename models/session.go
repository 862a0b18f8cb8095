package models

import "time"

// SessionPhase is the lifecycle phase of a booking session. There is no
// explicit "idle" phase: an idle scheduler simply has no session in the
// cache.
type SessionPhase string

const (
	PhaseLoading        SessionPhase = "loading"
	PhaseReady          SessionPhase = "ready"
	PhaseAlreadyBooked  SessionPhase = "alreadyBooked"
	PhaseLoadError      SessionPhase = "loadError"
	PhaseBooking        SessionPhase = "booking"
	PhaseBookingSuccess SessionPhase = "bookingSuccess"
)

// HostFilterAll selects every host in the campaign.
const HostFilterAll = "all"

// MonthCursor identifies the month the calendar is opened on. Only year and
// month matter; navigation never depends on a day-of-month.
type MonthCursor struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// BookingSession holds the interactive selection flow between opening the
// scheduler and a terminal outcome. It is stored as JSON in Redis with a
// TTL and carries a snapshot of the campaign's host list.
type BookingSession struct {
	SessionID   string `json:"sessionId"`
	CampaignID  string `json:"campaignId"`
	RecipientID string `json:"recipientId"`

	Phase SessionPhase `json:"phase"`

	HostFilter     string      `json:"hostFilter"`
	ViewedMonth    MonthCursor `json:"viewedMonth"`
	SelectedDate   string      `json:"selectedDate,omitempty"`
	SelectedSlotID string      `json:"selectedSlotId,omitempty"`
	SelectedHostID string      `json:"selectedHostId,omitempty"`

	CampaignName    string           `json:"campaignName,omitempty"`
	Hosts           []Host           `json:"hosts,omitempty"`
	ExistingBooking *ExistingBooking `json:"existingBooking,omitempty"`

	// LastError is a human-readable message attached to the ready phase
	// after a failed booking attempt; it never blocks a retry.
	LastError string `json:"lastError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasSelection reports whether the session holds a complete
// date + slot + host selection.
func (s *BookingSession) HasSelection() bool {
	return s.SelectedDate != "" && s.SelectedSlotID != "" && s.SelectedHostID != ""
}
