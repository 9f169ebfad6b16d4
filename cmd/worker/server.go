package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"busticket-backend/internal/shared"
	"busticket-backend/pkg/container"
)

// asynqServer wraps asynq.Server so shutdown can be sequenced with the
// scheduler's
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: c.Config.Redis.Host, Password: c.Config.Redis.Password, DB: c.Config.Redis.DB},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueBooking: 10,
				shared.QueueDefault: 5,
			},
			Concurrency: c.Config.Worker.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Worker] Task failed - Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Worker] Failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

func (s *asynqServer) Shutdown() {
	log.Println("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Println("[Worker] Stopped")
}
