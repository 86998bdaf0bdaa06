package eventredis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"panelwatch/pkg/models"
)

// Config configures the Redis publisher.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Timeout  time.Duration
}

// Writer pushes events onto a Redis list for downstream consumers.
type Writer struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewWriter creates a Redis list publisher.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("redis key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Writer{
		client:  client,
		key:     cfg.Key,
		timeout: cfg.Timeout,
	}, nil
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "redis" }

// WriteEvents pushes a batch of JSON-encoded events onto the list.
func (w *Writer) WriteEvents(events []*models.EventRecord) error {
	if len(events) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(events))
	for _, rec := range events {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		values = append(values, data)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.client.RPush(ctx, w.key, values...).Err(); err != nil {
		return fmt.Errorf("rpush events: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (w *Writer) Close() error {
	return w.client.Close()
}
