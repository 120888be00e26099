package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"practica/config"
	"practica/services/expiration"
	"practica/services/tasks"

	"github.com/hibiken/asynq"
)

// InitExpiryWorker runs the async worker retiring overdue booking holds.
func InitExpiryWorker(guard *expiration.Guard) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
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
	mux.HandleFunc(tasks.TypeBookingExpire, handleExpireTask(guard))

	// Sweep periodically as a backstop for holds whose task never fired.
	go runExpirySweep(guard)

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(guard *expiration.Guard) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.BookingExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] invalid payload: %v", err)
			return err
		}

		if err := guard.ExpireNow(ctx, p.BookingID, time.Now()); err != nil {
			log.Printf("[ExpiryHandler] failed to expire booking %s: %v", p.BookingID, err)
			return err
		}
		return nil
	}
}

func runExpirySweep(guard *expiration.Guard) {
	ctx := context.Background()

	for {
		time.Sleep(1 * time.Minute)
		count, err := guard.SweepExpired(ctx, time.Now())
		if err != nil {
			log.Printf("[ExpirySweep] sweep failed: %v", err)
			continue
		}
		if count > 0 {
			log.Printf("[ExpirySweep] retired %d overdue holds", count)
		}
	}
}
