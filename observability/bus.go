package observability

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topics carrying run events. External collaborators subscribe to these; the
// planner publishes regardless of subscriber count.
const (
	TopicStageEvents = "tripflow.stages"
	TopicToolEvents  = "tripflow.tools"
)

// StageEvent is emitted on stage entry and exit.
type StageEvent struct {
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	Phase     string    `json:"phase"` // "enter" or "exit"
	Degraded  bool      `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolEvent is emitted after each tool invocation.
type ToolEvent struct {
	RunID      string    `json:"run_id"`
	Capability string    `json:"capability"`
	Provider   string    `json:"provider"`
	LatencyMS  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Bus is an in-process pub/sub bridge for run events. Publishing never
// blocks on missing subscribers, so the planner behaves identically with
// zero observers attached.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates an event bus backed by Watermill's gochannel transport.
func NewBus() *Bus {
	logger := watermill.NewStdLogger(false, false)
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{BlockPublishUntilSubscriberAck: false},
			logger,
		),
	}
}

// PublishStage emits a stage entry/exit record.
func (b *Bus) PublishStage(event StageEvent) {
	b.publish(TopicStageEvents, event)
}

// PublishTool emits a tool invocation record.
func (b *Bus) PublishTool(event ToolEvent) {
	b.publish(TopicToolEvents, event)
}

func (b *Bus) publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := message.NewMessage(uuid.NewString(), data)
	_ = b.pubsub.Publish(topic, msg)
}

// Subscribe returns a channel of raw event messages for the topic.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts down the underlying transport.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
