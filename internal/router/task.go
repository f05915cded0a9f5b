package router

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/dig"

	"hotel-faq/internal/config"
	"hotel-faq/internal/logger"
	"hotel-faq/internal/session"
)

// TaskTypeSessionSweep is the asynq task type periodically enqueued to
// evict idle sessions from the SessionStore.
const TaskTypeSessionSweep = "session:sweep"

func redisClientOpt(cfg *config.AsynqConfig) *asynq.RedisClientOpt {
	return &asynq.RedisClientOpt{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// NewAsyncqClient builds the client used to enqueue tasks (the scheduler
// below uses its own internal client, but handlers that need to enqueue
// ad-hoc work share this one).
func NewAsyncqClient(cfg *config.Config) *asynq.Client {
	return asynq.NewClient(redisClientOpt(cfg.Asynq))
}

// NewAsynqServer builds the worker server that processes enqueued tasks.
func NewAsynqServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(
		redisClientOpt(cfg.Asynq),
		asynq.Config{
			Concurrency: cfg.Asynq.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)
}

// AsynqTaskParams collects what the session-sweep task handler needs.
type AsynqTaskParams struct {
	dig.In

	Server   *asynq.Server
	Sessions *session.Store
}

// RunAsynqServer wires the session-sweep handler and starts the worker
// server in the background.
func RunAsynqServer(params AsynqTaskParams) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSessionSweep, func(ctx context.Context, _ *asynq.Task) error {
		evicted := params.Sessions.Cleanup()
		if evicted > 0 {
			logger.GetLogger(ctx).Infof("session sweep evicted %d idle sessions", evicted)
		}
		return nil
	})

	go func() {
		if err := params.Server.Run(mux); err != nil {
			log.Fatalf("could not run asynq server: %v", err)
		}
	}()
	return mux
}

// RunAsynqScheduler enqueues TaskTypeSessionSweep on cfg.Session.CleanupInterval.
func RunAsynqScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisClientOpt(cfg.Asynq), nil)
	spec := "@every " + cfg.Session.CleanupInterval.String()
	if _, err := scheduler.Register(spec, asynq.NewTask(TaskTypeSessionSweep, nil)); err != nil {
		return nil, err
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("asynq scheduler stopped: %v", err)
		}
	}()
	return scheduler, nil
}
