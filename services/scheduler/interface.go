package scheduler

import (
	"context"

	scheduleRepo "giftmeet/database/repository/schedule"
	"giftmeet/models"
	"giftmeet/services/notification"
)

// SchedulerService drives the interactive booking flow:
// host filter → date → slot → confirm.
type SchedulerService interface {
	OpenSession(ctx context.Context, campaignID, recipientID string) (*models.BookingSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error)
	SetHostFilter(ctx context.Context, sessionID, hostFilter string) (*models.BookingSession, error)
	SelectDate(ctx context.Context, sessionID, date string) (*models.BookingSession, error)
	SelectSlot(ctx context.Context, sessionID, hostID, slotID string) (*models.BookingSession, error)
	NavigateMonth(ctx context.Context, sessionID, direction string) (*models.BookingSession, error)
	ConfirmBooking(ctx context.Context, sessionID string) (*models.BookingSession, *models.BookingConfirmation, error)
	CloseSession(ctx context.Context, sessionID string) error
}

// DefaultSchedulerService implements SchedulerService.
type DefaultSchedulerService struct {
	Store           scheduleRepo.ScheduleStore
	Sessions        SessionStore
	Executor        *BookingExecutor
	NotificationSvc notification.NotificationService
}
