package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestProducer_Publish(t *testing.T) {
	writer := new(MockWriter)
	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || string(msgs[0].Key) != "entity-1" {
			return false
		}
		var body map[string]any
		return json.Unmarshal(msgs[0].Value, &body) == nil && body["changeType"] == "sale"
	})).Return(nil)

	p := NewProducerWithWriter(writer, "inventory.changed")
	err := p.Publish(context.Background(), "entity-1", map[string]string{"changeType": "sale"})

	require.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestProducer_PublishError(t *testing.T) {
	writer := new(MockWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	writer.On("Close").Return(nil)

	p := NewProducerWithWriter(writer, "inventory.changed")
	err := p.Publish(context.Background(), "k", struct{}{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.NoError(t, p.Close())
}

func TestMessageCarrier(t *testing.T) {
	msg := kafka.Message{}
	c := NewMessageCarrier(&msg)

	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "x=1")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
}
