package observability

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestBusDeliversStageEvents(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx, TopicStageEvents)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sent := StageEvent{RunID: "run-1", Stage: "enhance", Phase: "enter", Timestamp: time.Now()}
	bus.PublishStage(sent)

	select {
	case msg := <-msgs:
		var got StageEvent
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		msg.Ack()
		if got.RunID != sent.RunID || got.Stage != sent.Stage || got.Phase != sent.Phase {
			t.Errorf("got %+v, want %+v", got, sent)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no stage event delivered")
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	// Must not block or panic with zero observers attached.
	bus.PublishTool(ToolEvent{RunID: "run-1", Capability: "flights", Provider: "mock"})
	bus.PublishStage(StageEvent{RunID: "run-1", Stage: "plan", Phase: "exit"})
}
