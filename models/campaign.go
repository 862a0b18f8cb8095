package models

import "time"

// Campaign is a scheduling context: a gifting campaign whose recipients can
// book a meeting with one of the campaign's hosts.
type Campaign struct {
	ID           string `bson:"id" json:"id"`
	Name         string `bson:"name" json:"name"`
	MeetingHosts []Host `bson:"meetingHosts" json:"meetingHosts"`
}

// Host is a person offering meeting slots within a campaign.
type Host struct {
	HostID      string          `bson:"hostId" json:"hostId"`
	Name        string          `bson:"name" json:"name"`
	Email       string          `bson:"email" json:"email"`
	Role        string          `bson:"role,omitempty" json:"role,omitempty"`
	LinkedInURL string          `bson:"linkedInUrl,omitempty" json:"linkedInUrl,omitempty"`
	Timezone    string          `bson:"timezone,omitempty" json:"timezone,omitempty"`
	FCMToken    string          `bson:"fcmToken,omitempty" json:"-"`
	Schedule    []ScheduleDay   `bson:"schedule" json:"schedule"`
	Preferences HostPreferences `bson:"preferences" json:"preferences"`
}

// HostPreferences holds per-host scheduling settings.
type HostPreferences struct {
	SlotDurationMinutes int  `bson:"slotDurationMinutes" json:"slotDurationMinutes"`
	Active              bool `bson:"active" json:"active"`
}

// ScheduleDay groups one host's slots for a single calendar date.
// At most one ScheduleDay exists per (host, date) pair.
type ScheduleDay struct {
	Date  string `bson:"date" json:"date"` // ISO "YYYY-MM-DD"
	Slots []Slot `bson:"slots" json:"slots"`
}

// Slot is the atomic bookable unit. Times are "HH:MM" in the host's local
// timezone. Once booked, RecipientID and BookedAt are set and immutable.
type Slot struct {
	SlotID      string     `bson:"slotId" json:"slotId"`
	StartTime   string     `bson:"startTime" json:"startTime"`
	EndTime     string     `bson:"endTime" json:"endTime"`
	IsBooked    bool       `bson:"isBooked" json:"isBooked"`
	RecipientID string     `bson:"recipientId,omitempty" json:"recipientId,omitempty"`
	BookedAt    *time.Time `bson:"bookedAt,omitempty" json:"bookedAt,omitempty"`
}

// HostSlot pairs a slot with the host offering it, for flattened
// availability listings across hosts.
type HostSlot struct {
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
	Slot     Slot   `json:"slot"`
}

// HostAggregate carries per-host display counts.
type HostAggregate struct {
	HostID        string `json:"hostId"`
	HostName      string `json:"hostName"`
	OpenSlots     int    `json:"openSlots"`
	ScheduledDays int    `json:"scheduledDays"`
}
