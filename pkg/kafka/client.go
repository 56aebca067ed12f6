// Package kafka carries ingest tasks from the upload path to the
// background processing pipeline.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"docvault-go/internal/config"
	"docvault-go/internal/errs"
	"docvault-go/pkg/database"
	"docvault-go/pkg/log"
)

// IngestTask is the message enqueued for every uploaded or re-uploaded
// source.
type IngestTask struct {
	Source    string `json:"source"`
	Kind      string `json:"kind"`
	ModTime   int64  `json:"mtime"`
	SizeBytes int64  `json:"size_bytes"`
}

// TaskProcessor is any service that can process an ingest task. It
// decouples the consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task IngestTask) error
}

var producer *kafka.Writer

// InitProducer initializes the ingest task producer.
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka producer initialized")
}

// ProduceIngestTask enqueues one ingest task. Tasks for the same source
// share a message key so they land on one partition in upload order.
func ProduceIngestTask(task IngestTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return producer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(task.Source),
		Value: taskBytes,
	})
}

// StartConsumer runs the ingest task consumer loop. Failed tasks are
// retried up to three times (counted in Redis) before their offset is
// committed; extraction failures are skipped immediately since retrying
// an unreadable file cannot succeed.
func StartConsumer(cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka consumer started, listening on topic '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("failed to read message from Kafka", err)
			break
		}

		var task IngestTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("unparseable Kafka message: %v, value: %s", err, string(m.Value))
			// Malformed message; commit so it does not block the topic.
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit bad message: %v", err)
			}
			continue
		}

		log.Infof("processing ingest task: source=%s kind=%s", task.Source, task.Kind)
		if err := processor.Process(context.Background(), task); err != nil {
			log.Errorf("ingest task failed: source=%s, error: %v", task.Source, err)

			var extractionErr *errs.ExtractionError
			if errors.As(err, &extractionErr) {
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("failed to commit Kafka offset: %v", err)
				}
				continue
			}

			attemptsKey := fmt.Sprintf("ingest:attempts:%s", task.Source)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr != nil {
				// Redis down: leave the offset uncommitted and let Kafka
				// redeliver.
				continue
			}
			_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()

			if attempts >= 3 {
				log.Errorf("ingest task failed %d times, giving up: source=%s", attempts, task.Source)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("failed to commit Kafka offset: %v", err)
				}
			}
		} else {
			log.Infof("ingest task completed: source=%s", task.Source)
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("ingest:attempts:%s", task.Source)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit Kafka offset: %v", err)
			}
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("failed to close Kafka consumer: %v", err)
	}
}
