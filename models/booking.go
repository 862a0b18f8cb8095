package models

import "time"

// BookingRequest is the transient value sent to the schedule store when a
// recipient confirms a selection.
type BookingRequest struct {
	HostID      string    `bson:"hostId" json:"hostId"`
	SlotID      string    `bson:"slotId" json:"slotId"`
	Date        string    `bson:"date" json:"date"`
	RecipientID string    `bson:"recipientId" json:"recipientId"`
	RequestedAt time.Time `bson:"requestedAt" json:"requestedAt"`
}

// BookingConfirmation echoes the booked slot back to the caller after the
// store accepted the booking.
type BookingConfirmation struct {
	BookingID   string    `bson:"bookingId" json:"bookingId"`
	CampaignID  string    `bson:"campaignId" json:"campaignId"`
	HostID      string    `bson:"hostId" json:"hostId"`
	HostName    string    `bson:"hostName" json:"hostName"`
	SlotID      string    `bson:"slotId" json:"slotId"`
	Date        string    `bson:"date" json:"date"`
	StartTime   string    `bson:"startTime" json:"startTime"`
	EndTime     string    `bson:"endTime" json:"endTime"`
	RecipientID string    `bson:"recipientId" json:"recipientId"`
	BookedAt    time.Time `bson:"bookedAt" json:"bookedAt"`
}

// ExistingBooking is the read-only summary shown when a recipient already
// holds a booking in the campaign.
type ExistingBooking struct {
	HostID    string     `json:"hostId"`
	HostName  string     `json:"hostName"`
	SlotID    string     `json:"slotId"`
	Date      string     `json:"date"`
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	BookedAt  *time.Time `json:"bookedAt,omitempty"`
}

// ReminderPayload is the asynq task payload for host meeting reminders.
type ReminderPayload struct {
	BookingID   string `json:"bookingId"`
	CampaignID  string `json:"campaignId"`
	HostID      string `json:"hostId"`
	RecipientID string `json:"recipientId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}
