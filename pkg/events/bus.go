package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Publisher is what domain services depend on to emit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Bus carries events in process over a watermill GoChannel topic.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewBus(pubSub *gochannel.GoChannel, topic string) *Bus {
	return &Bus{pubSub: pubSub, topic: topic}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	raw, err := json.Marshal(envelope{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), raw)
	msg.SetContext(ctx)
	return b.pubSub.Publish(b.topic, msg)
}

// Subscribe returns the raw message stream; it closes when ctx is done.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, b.topic)
}

// Decode reads an event published by Bus.
func Decode(msg *message.Message) (BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return BaseEvent{}, err
	}
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}
