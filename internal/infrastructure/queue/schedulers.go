package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"busticket-backend/internal/config"
	"busticket-backend/internal/domains/payment/job"
	"busticket-backend/internal/shared"
	"busticket-backend/pkg/logger"
)

type Scheduler struct {
	scheduler    *asynq.Scheduler
	workerConfig config.WorkerConfig
}

func NewScheduler(redisAddress string, workerConfig config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler:    scheduler,
		workerConfig: workerConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerExpirePendingOrdersJob()
}

// ================================================
// JOB 1: Expire Pending Orders
// ================================================
// Pending orders whose payment never arrived hold seats and coupon
// slots. The sweep fails them so both are released. The cron cadence
// comes from config so staging can run it more aggressively.
func (s *Scheduler) registerExpirePendingOrdersJob() error {
	payload, err := json.Marshal(job.ExpirePendingOrdersPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeExpirePendingOrders, payload)

	_, err = s.scheduler.Register(
		s.workerConfig.ExpirySweepCron,
		task,
		asynq.Queue(shared.QueueBooking),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register ExpirePendingOrders job", err)
		return err
	}

	logger.Info("Registered ExpirePendingOrders job", map[string]interface{}{
		"cron": s.workerConfig.ExpirySweepCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
