package main

import (
	"context"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"plc-alarm-worker/internal/config"
	"plc-alarm-worker/internal/db"
	"plc-alarm-worker/internal/metrics"
	"plc-alarm-worker/internal/mq"
	"plc-alarm-worker/internal/registry"
	"plc-alarm-worker/internal/server"
	"plc-alarm-worker/internal/service"
	"plc-alarm-worker/internal/store"
)

func startWorker(
	lc fx.Lifecycle,
	conn *mq.Connection,
	cfg *config.Config,
	logger *zap.Logger,
	processor *service.ProcessorService,
) (*mq.Consumer, error) {
	metrics.Init()

	// Create context for consumer that will be cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())

	consumer, err := mq.NewConsumer(mq.ConsumerConfig{
		Connection:       conn,
		Queue:            cfg.RabbitMQ.PointValueQueue,
		DLQQueue:         cfg.RabbitMQ.DLQQueue,
		Exchange:         cfg.RabbitMQ.PointValueExchange,
		RoutingKey:       cfg.RabbitMQ.PointValueKey,
		PrefetchCount:    cfg.RabbitMQ.PrefetchCount,
		Logger:           logger,
		MessageProcessor: processor.ProcessMessage,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	// Register lifecycle hooks
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			logger.Info("starting point value consumer",
				zap.String("queue", cfg.RabbitMQ.PointValueQueue),
				zap.Int("prefetch", cfg.RabbitMQ.PrefetchCount))
			return consumer.Start(ctx)
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close consumer", zap.Error(err))
				return err
			}
			logger.Info("worker stopped gracefully")
			return nil
		},
	})

	return consumer, nil
}

// ProvidePointRegistry creates the point registry
func ProvidePointRegistry(pool *db.Pool) *registry.PointRegistry {
	return registry.NewPointRegistry(pool)
}

// ProvideAlarmStore creates the alarm store
func ProvideAlarmStore(pool *db.Pool) *store.AlarmStore {
	return store.NewAlarmStore(pool)
}

// ProvidePublisher creates the alarm transition publisher
func ProvidePublisher(conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (*mq.Publisher, error) {
	return mq.NewPublisher(conn, cfg.RabbitMQ.AlarmExchange, logger)
}

// ProvideProcessorService creates the notification pipeline
func ProvideProcessorService(
	points *registry.PointRegistry,
	alarms *store.AlarmStore,
	publisher *mq.Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *service.ProcessorService {
	return service.NewProcessorService(points, alarms, publisher, cfg, logger)
}

// ProvideDBPool creates a new database pool instance
func ProvideDBPool(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*db.Pool, error) {
	return db.NewPool(lc, logger, cfg.Database.URL)
}

// ProvideMQConnection creates a new RabbitMQ connection instance
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}

// ProvideHTTPHandler creates the view/ops HTTP handler
func ProvideHTTPHandler(alarms *store.AlarmStore, logger *zap.Logger) http.Handler {
	return server.NewHandler(alarms, alarms, logger)
}

// ProvideHTTPServer creates the query/ops HTTP server
func ProvideHTTPServer(lc fx.Lifecycle, handler http.Handler, cfg *config.Config, logger *zap.Logger) *http.Server {
	return server.NewServer(lc, handler, cfg.ServicePort, logger)
}
