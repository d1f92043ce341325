package drivers

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaConfig configures a Consumer.
type KafkaConfig struct {
	Brokers []string
	Topic   string

	// Group is optional; without it the consumer reads all partitions
	// standalone.
	Group string
}

// Consumer feeds Kafka record values into a source, decoding each record
// value into T. Offsets are committed by the group's auto-commit; delivery
// into the graph is at-least-once at best, never exactly-once.
type Consumer[T any] struct {
	cfg    KafkaConfig
	decode func([]byte) (T, error)
}

// NewConsumer validates the config and creates the driver.
func NewConsumer[T any](cfg KafkaConfig, decode func([]byte) (T, error)) (*Consumer[T], error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka consumer: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka consumer: topic is required")
	}
	if decode == nil {
		return nil, fmt.Errorf("kafka consumer: %w", ErrDecoderRequired)
	}
	return &Consumer[T]{cfg: cfg, decode: decode}, nil
}

// Run implements pulse.Driver[T].
func (c *Consumer[T]) Run(ctx context.Context, emit func(T) bool) error {
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.cfg.Brokers...),
		kgo.ConsumeTopics(c.cfg.Topic),
	}
	if c.cfg.Group != "" {
		opts = append(opts, kgo.ConsumerGroup(c.cfg.Group))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("create kafka client: %w", err)
	}
	defer client.Close()

	for {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		for _, fetchErr := range fetches.Errors() {
			if errors.Is(fetchErr.Err, context.Canceled) {
				continue
			}
			return fmt.Errorf("fetch %s/%d: %w", fetchErr.Topic, fetchErr.Partition, fetchErr.Err)
		}

		var (
			decodeErr error
			stopped   bool
		)
		fetches.EachRecord(func(record *kgo.Record) {
			if decodeErr != nil || stopped {
				return
			}
			v, err := c.decode(record.Value)
			if err != nil {
				decodeErr = fmt.Errorf("decode record at %s/%d@%d: %w",
					record.Topic, record.Partition, record.Offset, err)
				return
			}
			if !emit(v) {
				stopped = true
			}
		})
		if decodeErr != nil {
			return decodeErr
		}
		if stopped {
			return nil
		}
	}
}
