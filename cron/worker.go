package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"clipbook/config"
	recordsRepo "clipbook/database/repository/records"
	"clipbook/models"
	"clipbook/services/messenger"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeReminderSend = "reminder:send"

// AsynqReminderScheduler queues reminder DMs ahead of committed
// appointments. It satisfies the booking coordinator's ReminderScheduler.
type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

func NewAsynqReminderScheduler() *AsynqReminderScheduler {
	return &AsynqReminderScheduler{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisTaskDB,
		}),
		lead: time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute,
	}
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, rec models.BookingRecord) error {
	fireAt := rec.Start.Add(-s.lead)
	if !fireAt.After(time.Now()) {
		// Appointment starts inside the lead window; no reminder.
		return nil
	}

	payload, err := json.Marshal(models.ReminderPayload{
		SubjectID:    rec.SubjectID,
		CustomerName: rec.CustomerName,
		Start:        rec.Start,
		EventID:      rec.EventID,
	})
	if err != nil {
		return fmt.Errorf("marshal reminder payload: %w", err)
	}

	task := asynq.NewTask(TypeReminderSend, payload)
	if _, err := s.client.EnqueueContext(ctx, task, asynq.ProcessAt(fireAt)); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}

// InitReminderWorker runs the async worker in background. records may be
// nil when the record log is disabled; reminders are then sent unchecked.
func InitReminderWorker(msgr messenger.MessengerService, records recordsRepo.BookingRecordRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
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
	mux.HandleFunc(TypeReminderSend, handleReminderTask(msgr, records))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(msgr messenger.MessengerService, records recordsRepo.BookingRecordRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		// The cancel path drops the record echo, so a missing record means
		// the booking is gone and the reminder must not fire. Any other
		// lookup failure fails open to sending.
		if records != nil {
			if _, err := records.GetByEventID(ctx, p.EventID); errors.Is(err, recordsRepo.ErrNotFound) {
				log.Printf("[ReminderHandler] booking %s cancelled, skipping reminder", p.EventID)
				return nil
			}
		}

		text := fmt.Sprintf("⏰ Reminder: your appointment is coming up at %s. See you soon!",
			p.Start.Format("3:04 PM"))
		if err := msgr.SendMessage(ctx, p.SubjectID, text); err != nil {
			log.Printf("[ReminderHandler] failed to send reminder DM: %v", err)
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
		DB:       config.AppConfig.RedisTaskDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReminderWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
