package drivers

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNewConsumer(t *testing.T) {
	decode := func(b []byte) (string, error) { return string(b), nil }

	t.Run("brokers are required", func(t *testing.T) {
		_, err := NewConsumer(KafkaConfig{Topic: "trades"}, decode)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "broker")
	})

	t.Run("topic is required", func(t *testing.T) {
		_, err := NewConsumer(KafkaConfig{Brokers: []string{"localhost:9092"}}, decode)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "topic")
	})

	t.Run("decoder is required", func(t *testing.T) {
		_, err := NewConsumer[string](KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "trades",
		}, nil)
		assert.True(t, errors.Is(err, ErrDecoderRequired))
	})

	t.Run("valid config constructs", func(t *testing.T) {
		consumer, err := NewConsumer(KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "trades",
			Group:   "pulse",
		}, decode)
		assert.NoError(t, err)
		assert.NotZero(t, consumer)
	})
}
