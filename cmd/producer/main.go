package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infrastructure/config"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	intervalFlag = flag.Duration("interval", 5*time.Second, "Time interval between messages")
	badDataRate  = flag.Float64("bad-rate", 0.2, "Rate of bad data messages")
	maxProductID = flag.Int("max-product-id", 20, "Highest product id to order")
	maxUserID    = flag.Int("max-user-id", 5, "Highest user id to order as")
	maxLines     = flag.Int("max-lines", 3, "Maximum line items per order")
)

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", err)
		}
	}()

	cfg, err := config.LoadProducerConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Broker),
		Topic:                  cfg.Kafka.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("Failed to close Kafka writer", zap.Error(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger.Info("Producer started",
		zap.String("broker", cfg.Kafka.Broker),
		zap.String("topic", cfg.Kafka.Topic),
		zap.Float64("bad_rate", *badDataRate),
		zap.Duration("interval", *intervalFlag))

	ticker := time.NewTicker(*intervalFlag)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping producer...")
			return
		case <-ticker.C:
			if err := produce(ctx, writer, logger); err != nil {
				logger.Error("Failed to produce message", zap.Error(err))
			}
		}
	}
}

func produce(ctx context.Context, writer *kafka.Writer, logger *zap.Logger) error {
	if rand.Float64() < *badDataRate {
		return sendGarbage(ctx, writer)
	}
	return sendOrder(ctx, writer, logger)
}

func sendOrder(ctx context.Context, writer *kafka.Writer, logger *zap.Logger) error {
	req := generateOrderRequest()

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal order request: %w", err)
	}

	if err := writer.WriteMessages(ctx, kafka.Message{Key: []byte(req.RequestID), Value: payload}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	logger.Info("Order request sent",
		zap.String("request_id", req.RequestID),
		zap.Int64("user_id", req.UserID),
		zap.Int("lines", len(req.ProductIDs)))
	return nil
}

func sendGarbage(ctx context.Context, writer *kafka.Writer) error {
	var garbage []byte
	switch gofakeit.Number(0, 2) {
	case 0:
		garbage = []byte(fmt.Sprintf(`{"request_id": "%s", "broken": true,`, uuid.NewString()))
	case 1:
		garbage = []byte(fmt.Sprintf(`{"user_id": %d, "product_ids": [1, 2], "quantities": [1]}`, gofakeit.Number(1, *maxUserID)))
	default:
		garbage = []byte(fmt.Sprintf(`{"user_id": %d, "product_ids": [1], "quantities": [0]}`, gofakeit.Number(1, *maxUserID)))
	}

	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(uuid.NewString()),
		Value: garbage,
	})
}

func generateOrderRequest() model.OrderRequest {
	lines := gofakeit.Number(1, *maxLines)
	req := model.OrderRequest{
		RequestID:  uuid.NewString(),
		UserID:     int64(gofakeit.Number(1, *maxUserID)),
		ProductIDs: make([]int64, lines),
		Quantities: make([]int, lines),
	}
	for i := range lines {
		req.ProductIDs[i] = int64(gofakeit.Number(1, *maxProductID))
		req.Quantities[i] = gofakeit.Number(1, 5)
	}
	return req
}
