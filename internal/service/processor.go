package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plc-alarm-worker/internal/config"
	"plc-alarm-worker/internal/db"
	"plc-alarm-worker/internal/engine"
	"plc-alarm-worker/internal/logging"
	"plc-alarm-worker/internal/metrics"
	"plc-alarm-worker/internal/mq"
	"plc-alarm-worker/internal/registry"
)

// PointValueMessage represents the incoming message from RabbitMQ
type PointValueMessage struct {
	RequestID string  `json:"request_id"`
	Payload   Payload `json:"payload"`
}

// Payload carries a batch of point value samples
type Payload struct {
	Values []PointSample `json:"values"`
}

// PointSample represents a single point value sample. The value is coerced
// to a two-state signal: any nonzero value counts as active.
type PointSample struct {
	PointID int     `json:"point_id"`
	Ts      int64   `json:"ts"`
	Value   float64 `json:"value"`
}

// PointLookup resolves point configuration.
type PointLookup interface {
	Lookup(ctx context.Context, pointID int) (*db.Point, error)
}

// AlarmWriter applies alarm state transitions.
type AlarmWriter interface {
	FindOpen(ctx context.Context, pointID int) (*db.AlarmRecord, error)
	Open(ctx context.Context, point *db.Point, activeTime int64) (int64, error)
	Close(ctx context.Context, pointID int, inactiveTime int64) (int64, error)
}

// TransitionPublisher publishes alarm transitions downstream.
type TransitionPublisher interface {
	PublishAlarmTransition(ctx context.Context, event mq.AlarmTransition, routingKey string) error
}

// ProcessorService handles point value message processing logic
type ProcessorService struct {
	points    PointLookup
	alarms    AlarmWriter
	publisher TransitionPublisher
	cfg       *config.Config
	logger    *zap.Logger
}

// NewProcessorService creates a new processor service
func NewProcessorService(
	points PointLookup,
	alarms AlarmWriter,
	publisher TransitionPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *ProcessorService {
	return &ProcessorService{
		points:    points,
		alarms:    alarms,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessMessage processes an incoming point value message.
//
// Samples are applied strictly in payload order. A registry miss or a point
// without alarm supervision skips the sample; any store failure aborts the
// whole message with an error so the delivery is NACKed and upstream decides
// the retry, never silently dropped.
func (s *ProcessorService) ProcessMessage(ctx context.Context, body []byte) error {
	var msg PointValueMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		metrics.ObserveMessage(metrics.ResultError)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}

	reqLogger := logging.WithRequestID(s.logger, msg.RequestID)
	reqLogger.Info("processing point values",
		zap.Int("sample_count", len(msg.Payload.Values)),
	)

	var transitions []publishedTransition

	for _, sample := range msg.Payload.Values {
		transition, err := s.processSample(ctx, sample, reqLogger)
		if err != nil {
			metrics.ObserveSample(metrics.ResultError)
			metrics.ObserveMessage(metrics.ResultError)
			reqLogger.Error("failed to process sample",
				zap.Error(err),
				zap.Int("point_id", sample.PointID),
				zap.Int64("ts", sample.Ts),
			)
			return fmt.Errorf("failed to process sample: %w", err)
		}
		if transition != nil {
			transitions = append(transitions, *transition)
		}
	}

	// Publish transitions after all store writes landed
	for _, t := range transitions {
		if err := s.publisher.PublishAlarmTransition(ctx, t.event, t.routingKey); err != nil {
			// Log error but don't fail the entire message processing
			reqLogger.Error("failed to publish alarm transition",
				zap.Error(err),
				zap.Int64("alarm_id", t.event.AlarmID),
				zap.String("action", t.event.Action),
			)
		}
	}

	metrics.ObserveMessage(metrics.ResultProcessed)
	reqLogger.Info("point values processed",
		zap.Int("transition_count", len(transitions)),
	)

	return nil
}

type publishedTransition struct {
	event      mq.AlarmTransition
	routingKey string
}

func (s *ProcessorService) processSample(
	ctx context.Context,
	sample PointSample,
	logger *zap.Logger,
) (*publishedTransition, error) {
	point, err := s.points.Lookup(ctx, sample.PointID)
	if err != nil {
		if errors.Is(err, registry.ErrPointNotFound) {
			// Unknown point: treat as not under alarm supervision
			logger.Debug("point not registered, skipping sample",
				zap.Int("point_id", sample.PointID),
			)
			metrics.ObserveSample(metrics.ResultSkipped)
			return nil, nil
		}
		return nil, err
	}

	if point.AlarmLevel != db.LevelState && point.AlarmLevel != db.LevelAlarm {
		metrics.ObserveSample(metrics.ResultSkipped)
		return nil, nil
	}

	open, err := s.alarms.FindOpen(ctx, point.ID)
	if err != nil {
		return nil, err
	}

	active := sample.Value != 0
	action := engine.Decide(point.AlarmLevel, open != nil, active)

	pointLogger := logging.WithPoint(logger, point.ID, point.Xid)

	switch action {
	case engine.ActionOpen:
		id, err := s.alarms.Open(ctx, point, sample.Ts)
		if err != nil {
			return nil, err
		}
		pointLogger.Info("alarm opened",
			zap.Int64("alarm_id", id),
			zap.Int("level", point.AlarmLevel),
			zap.Int64("active_time", sample.Ts),
		)
		metrics.ObserveSample(metrics.ResultProcessed)
		metrics.ObserveTransition(engine.ActionOpen.String())
		return &publishedTransition{
			event: mq.AlarmTransition{
				Action:     "opened",
				AlarmID:    id,
				PointID:    point.ID,
				PointXid:   point.Xid,
				PointName:  point.Name,
				Level:      point.AlarmLevel,
				ActiveTime: sample.Ts,
			},
			routingKey: s.cfg.RabbitMQ.AlarmOpenedKey,
		}, nil

	case engine.ActionClose:
		id, err := s.alarms.Close(ctx, point.ID, sample.Ts)
		if err != nil {
			return nil, err
		}
		pointLogger.Info("alarm closed",
			zap.Int64("alarm_id", id),
			zap.Int64("inactive_time", sample.Ts),
		)
		metrics.ObserveSample(metrics.ResultProcessed)
		metrics.ObserveTransition(engine.ActionClose.String())
		return &publishedTransition{
			event: mq.AlarmTransition{
				Action:       "closed",
				AlarmID:      id,
				PointID:      point.ID,
				PointXid:     open.PointXid,
				PointName:    open.PointName,
				Level:        open.Level,
				ActiveTime:   open.ActiveTime,
				InactiveTime: sample.Ts,
			},
			routingKey: s.cfg.RabbitMQ.AlarmClosedKey,
		}, nil

	default:
		metrics.ObserveSample(metrics.ResultProcessed)
		return nil, nil
	}
}
