package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"giftmeet/config"
	scheduleRepo "giftmeet/database/repository/schedule"
	"giftmeet/models"
	"giftmeet/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// NewReminderQueueClient returns the asynq client used to enqueue reminder
// tasks.
func NewReminderQueueClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(store scheduleRepo.ScheduleStore) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeMeetingReminder, handleMeetingReminder(store))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleMeetingReminder looks the host up at fire time so a rotated FCM
// token still gets the reminder.
func handleMeetingReminder(store scheduleRepo.ScheduleStore) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] Invalid payload: %v", err)
			return err
		}

		campaign, err := store.GetCampaignSchedule(ctx, p.CampaignID)
		if err != nil {
			log.Printf("[ReminderHandler] Failed to load campaign %s: %v", p.CampaignID, err)
			return err
		}

		var token string
		for _, host := range campaign.MeetingHosts {
			if host.HostID == p.HostID {
				token = host.FCMToken
				break
			}
		}
		if token == "" {
			log.Printf("[ReminderHandler] Host %s has no FCM token, skipping reminder", p.HostID)
			return nil
		}

		data := map[string]string{
			"bookingId": p.BookingID,
			"date":      p.Date,
			"startTime": p.StartTime,
		}
		if err := notification.SendHostPush(ctx, token, p.Title, p.Body, data); err != nil {
			log.Printf("[ReminderHandler] Failed to send reminder: %v", err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] Redis connection lost: %v", err)
		}
		time.Sleep(30 * time.Second)
	}
}
