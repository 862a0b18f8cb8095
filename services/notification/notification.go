package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"giftmeet/models"
	"giftmeet/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeMeetingReminder is the asynq task type for host meeting reminders.
const TypeMeetingReminder = "reminder:meeting"

// NotifyBookingConfirmed pushes a confirmation to the host's device and
// schedules a reminder ahead of the meeting start.
func (s *DefaultNotificationService) NotifyBookingConfirmed(
	ctx context.Context,
	host models.Host,
	confirmation models.BookingConfirmation,
) error {
	title := "New meeting booked"
	body := fmt.Sprintf("%s on %s at %s", confirmation.RecipientID, confirmation.Date, confirmation.StartTime)

	if err := SendHostPush(ctx, host.FCMToken, title, body, map[string]string{
		"bookingId":  confirmation.BookingID,
		"campaignId": confirmation.CampaignID,
		"date":       confirmation.Date,
		"startTime":  confirmation.StartTime,
	}); err != nil {
		utils.GetLogger().Warn("confirmation push failed",
			zap.String("hostID", host.HostID), zap.Error(err))
	}

	return s.scheduleReminder(host, confirmation)
}

// scheduleReminder enqueues the reminder task to fire LeadTime before the
// meeting starts, in the host's local timezone. Meetings starting too soon
// get no reminder.
func (s *DefaultNotificationService) scheduleReminder(host models.Host, confirmation models.BookingConfirmation) error {
	if s.Queue == nil {
		return nil
	}

	startsAt, err := meetingStart(confirmation.Date, confirmation.StartTime, host.Timezone)
	if err != nil {
		return fmt.Errorf("could not resolve meeting start: %w", err)
	}

	fireAt := startsAt.Add(-s.LeadTime)
	if fireAt.Before(time.Now()) {
		return nil
	}

	payload, err := json.Marshal(models.ReminderPayload{
		BookingID:   confirmation.BookingID,
		CampaignID:  confirmation.CampaignID,
		HostID:      confirmation.HostID,
		RecipientID: confirmation.RecipientID,
		Date:        confirmation.Date,
		StartTime:   confirmation.StartTime,
		Title:       "Upcoming meeting",
		Body:        fmt.Sprintf("Meeting with %s at %s", confirmation.RecipientID, confirmation.StartTime),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	task := asynq.NewTask(TypeMeetingReminder, payload)
	if _, err := s.Queue.Enqueue(task, asynq.ProcessAt(fireAt)); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}

// SendHostPush sends an FCM message to a host device. A missing token or an
// uninitialized FCM client is treated as push-disabled, not an error.
func SendHostPush(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" || utils.FCMClient == nil {
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}

func meetingStart(date, startTime, timezone string) (time.Time, error) {
	loc := time.UTC
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			loc = parsed
		}
	}
	return time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, loc)
}
