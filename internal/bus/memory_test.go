package bus

import (
	"context"
	"testing"
)

func TestMemoryBusWildcardDelivery(t *testing.T) {
	b := NewMemoryBus()
	var got []string
	_, err := b.Subscribe(context.Background(), "+/+/status", func(_ context.Context, msg Message) {
		got = append(got, msg.Topic)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = b.Publish(context.Background(), "farm1/zoneA/status", []byte("{}"))
	_ = b.Publish(context.Background(), "farm1/zoneA/sensors/temperature", []byte("{}"))
	_ = b.Publish(context.Background(), "farm2/zoneB/status", []byte("{}"))

	if len(got) != 2 {
		t.Fatalf("expected 2 matched deliveries, got %d: %v", len(got), got)
	}
	if got[0] != "farm1/zoneA/status" || got[1] != "farm2/zoneB/status" {
		t.Fatalf("unexpected delivered topics: %v", got)
	}
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	b := NewMemoryBus()
	n := 0
	unsub, err := b.Subscribe(context.Background(), "a/b/c", func(_ context.Context, _ Message) { n++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	_ = b.Publish(context.Background(), "a/b/c", nil)
	if err := unsub(); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = b.Publish(context.Background(), "a/b/c", nil)
	if n != 1 {
		t.Fatalf("expected handler invoked once before unsubscribe, got %d", n)
	}
}

func TestTopicMatchesHashWildcard(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"farm1/#", "farm1/zoneA/status", true},
		{"farm1/+/status", "farm1/zoneA/status", true},
		{"farm1/+/status", "farm1/zoneA/sensors/temperature", false},
		{"farm1/zoneA/status", "farm2/zoneA/status", false},
	}
	for _, c := range cases {
		got := topicMatches(splitTopic(c.pattern), splitTopic(c.topic))
		if got != c.want {
			t.Fatalf("topicMatches(%q, %q) = %v, want %v", c.pattern, c.topic, got, c.want)
		}
	}
}

func splitTopic(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}
