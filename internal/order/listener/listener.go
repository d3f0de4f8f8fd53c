package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/order"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventSalesOrderReceived = "SalesOrderReceived"

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// OrderListener feeds sales orders published by upstream systems into the
// same ingestion path as manual uploads.
type OrderListener struct {
	consumer MessageReader
	uc       order.UseCase
	logger   logger.ZapLogger
}

func NewOrderListener(consumer MessageReader, uc order.UseCase, logger logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger.With(zap.String("component", "order-listener")),
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting sales order Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping sales order Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type SalesOrderEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   SalesOrderBatch `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type SalesOrderBatch struct {
	Source string                 `json:"source"`
	Lines  []dto.CreateOrderInput `json:"lines"`
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event SalesOrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventSalesOrderReceived {
		return
	}

	l.logger.Info("Processing SalesOrderReceived event",
		zap.String("event_id", event.EventID),
		zap.Int("lines", len(event.Payload.Lines)),
	)

	result, err := l.uc.IngestOrders(ctx, event.Payload.Lines)
	if err != nil {
		l.logger.Error("Failed to ingest sales orders", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	for _, msg := range result.Errors {
		l.logger.Warn("Rejected sales order line", zap.String("event_id", event.EventID), zap.String("reason", msg))
	}
}
