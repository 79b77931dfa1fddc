package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/config"
)

// QueueIngest is the queue ingestion tasks are placed on
const QueueIngest = "ingest"

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

// AsynqClient wraps the Asynq client for enqueuing tasks
type AsynqClient struct {
	client     *asynq.Client
	maxRetries int
	logger     *slog.Logger
}

// NewAsynqClient creates a new Asynq client
func NewAsynqClient(cfg *config.QueueConfig, logger *slog.Logger) (*AsynqClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := asynq.NewClient(redisOpt(cfg))

	logger.Info("asynq client created",
		slog.String("redis_host", cfg.RedisHost),
		slog.Int("redis_port", cfg.RedisPort),
	)

	return &AsynqClient{
		client:     client,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}, nil
}

// Close closes the Asynq client
func (a *AsynqClient) Close() error {
	a.logger.Info("closing asynq client")
	return a.client.Close()
}

// EnqueueContext enqueues a task with context
func (a *AsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	info, err := a.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		a.logger.Error("failed to enqueue task",
			slog.String("task_type", task.Type()),
			slog.Any("error", err),
		)
		return nil, err
	}

	a.logger.Debug("task enqueued",
		slog.String("task_id", info.ID),
		slog.String("task_type", task.Type()),
		slog.String("queue", info.Queue),
	)

	return info, nil
}

// EnqueueIngest schedules a batch for ingestion. The task id is the batch
// id, so enqueuing the same batch twice leaves a single task.
func (a *AsynqClient) EnqueueIngest(ctx context.Context, batchID uuid.UUID) error {
	task, err := NewIngestTask(batchID)
	if err != nil {
		return err
	}

	_, err = a.EnqueueContext(ctx, task,
		asynq.Queue(QueueIngest),
		asynq.TaskID(batchID.String()),
		asynq.MaxRetry(a.maxRetries),
		asynq.Timeout(10*time.Minute),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		a.logger.Info("ingest task already queued", slog.String("batch_id", batchID.String()))
		return nil
	}
	return err
}

var _ ingestion.Enqueuer = (*AsynqClient)(nil)

// AsynqServer wraps the Asynq server for processing tasks
type AsynqServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// NewAsynqServer creates a new Asynq server
func NewAsynqServer(cfg *config.QueueConfig, logger *slog.Logger) (*AsynqServer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				QueueIngest: 1,
			},
			StrictPriority: cfg.StrictPriority,

			// Exponential backoff: 2s, 4s, 8s, 16s, ...
			RetryDelayFunc: func(n int, e error, t *asynq.Task) time.Duration {
				return time.Duration(1<<uint(n)) * time.Second
			},

			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task processing failed",
					slog.String("task_type", task.Type()),
					slog.String("payload", string(task.Payload())),
					slog.Any("error", err),
				)
			}),

			HealthCheckFunc: func(e error) {
				if e != nil {
					logger.Error("health check failed", slog.Any("error", e))
				}
			},
			HealthCheckInterval: 20 * time.Second,

			ShutdownTimeout: 25 * time.Second,
		},
	)

	logger.Info("asynq server created",
		slog.String("redis_host", cfg.RedisHost),
		slog.Int("redis_port", cfg.RedisPort),
		slog.Int("concurrency", cfg.Concurrency),
	)

	return &AsynqServer{
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}, nil
}

// Handle registers a handler for a task type
func (a *AsynqServer) Handle(pattern string, handler asynq.Handler) {
	a.mux.Handle(pattern, handler)
	a.logger.Debug("handler registered", slog.String("pattern", pattern))
}

// Start runs the server until it receives a termination signal
func (a *AsynqServer) Start() error {
	a.logger.Info("starting asynq server")
	if err := a.server.Run(a.mux); err != nil {
		return fmt.Errorf("failed to run asynq server: %w", err)
	}
	return nil
}
