package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/config"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderConsumer feeds order requests from a topic into the order processor.
// Only store outages are retried in place, so the offset never moves past an
// order that could still succeed. Every other failure is logged and committed.
type OrderConsumer struct {
	reader  messageReader
	placer  repository.OrderPlacer
	backoff func() retry.Backoff
	logger  *zap.Logger
}

func NewOrderConsumer(cfg config.KafkaConfig, placer repository.OrderPlacer, logger *zap.Logger) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Broker},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		MaxWait:  1 * time.Second,
	})
	return newOrderConsumer(reader, placer, logger)
}

func newOrderConsumer(reader messageReader, placer repository.OrderPlacer, logger *zap.Logger) *OrderConsumer {
	return &OrderConsumer{
		reader: reader,
		placer: placer,
		backoff: func() retry.Backoff {
			return retry.WithCappedDuration(10*time.Second, retry.NewExponential(200*time.Millisecond))
		},
		logger: logger,
	}
}

func (c *OrderConsumer) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("Failed to close Kafka reader", zap.Error(err))
		}
	}()

	c.logger.Info("Starting Kafka order consumer")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("Kafka consumer context canceled, stopping...")
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", zap.Error(err))
			continue
		}

		if err := c.process(ctx, msg); err != nil {
			c.logger.Info("Kafka consumer stopped before message was processed",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// process returns nil once msg may be committed; only context cancellation
// stops it earlier.
func (c *OrderConsumer) process(ctx context.Context, msg kafka.Message) error {
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if err := c.handle(ctx, msg); err != nil {
			c.logger.Error("Failed to place order from Kafka, will retry",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
}

// handle returns an error only when the store is unavailable.
func (c *OrderConsumer) handle(ctx context.Context, msg kafka.Message) error {
	req, err := decodeOrderRequest(msg.Value)
	if err != nil {
		c.logger.Warn("Dropping undecodable order request",
			zap.Int64("offset", msg.Offset), zap.Error(err), zap.ByteString("message", msg.Value))
		return nil
	}

	result, err := c.placer.Execute(ctx, req)
	switch {
	case err == nil:
		c.logger.Info("Order processed from Kafka",
			zap.String("request_id", req.RequestID), zap.String("total", result.Total.String()))
		return nil
	case errors.Is(err, model.ErrStoreUnavailable):
		return err
	case isRejection(err):
		c.logger.Info("Order rejected, skipping",
			zap.String("request_id", req.RequestID), zap.Error(err))
		return nil
	default:
		c.logger.Error("Dropping order after unexpected failure",
			zap.String("request_id", req.RequestID), zap.Int64("offset", msg.Offset),
			zap.ByteString("message", msg.Value), zap.Error(err))
		return nil
	}
}

func decodeOrderRequest(data []byte) (model.OrderRequest, error) {
	var req model.OrderRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("unmarshal order request: %w", err)
	}
	if req.UserID <= 0 {
		return req, fmt.Errorf("%w: user_id must be positive", model.ErrValidation)
	}
	return req, nil
}

func isRejection(err error) bool {
	return errors.Is(err, model.ErrMalformedRequest) ||
		errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrProductNotFound) ||
		errors.Is(err, model.ErrInsufficientStock)
}
