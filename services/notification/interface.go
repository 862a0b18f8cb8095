package notification

import (
	"context"
	"time"

	"giftmeet/models"

	"github.com/hibiken/asynq"
)

// NotificationService notifies a host when a recipient books a meeting and
// schedules the pre-meeting reminder.
type NotificationService interface {
	NotifyBookingConfirmed(ctx context.Context, host models.Host, confirmation models.BookingConfirmation) error
}

// DefaultNotificationService is the production implementation: an immediate
// FCM push plus a reminder task enqueued on the asynq queue.
type DefaultNotificationService struct {
	Queue    *asynq.Client
	LeadTime time.Duration
}

func NewDefaultNotificationService(queue *asynq.Client, leadTime time.Duration) *DefaultNotificationService {
	return &DefaultNotificationService{
		Queue:    queue,
		LeadTime: leadTime,
	}
}
