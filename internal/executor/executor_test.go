package executor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"poultrymapek/internal/bus"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/model"
	"poultrymapek/internal/topology"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newResolver(t *testing.T) *topology.Resolver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "system_config.json")
	if err := os.WriteFile(path, []byte(`{"farms":[{"id":"f1","zones":["z1"]}]}`), 0o644); err != nil {
		t.Fatalf("write topology: %v", err)
	}
	return topology.NewResolver(path)
}

func TestStartPublishesColdBootAllOffSweep(t *testing.T) {
	resolver := newResolver(t)
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	b := bus.NewMemoryBus()

	received := make(map[string][]byte)
	_, _ = b.Subscribe(context.Background(), "f1/z1/cmd/+", func(_ context.Context, msg bus.Message) {
		received[msg.Topic] = msg.Payload
	})

	e := New(b, resolver, store, nil, testLogger())
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, actuator := range model.AllActuators {
		topic := "f1/z1/cmd/" + string(actuator)
		if _, ok := received[topic]; !ok {
			t.Fatalf("expected a cold-boot command on %s", topic)
		}
	}
}

func TestOnPlanPublishesVerbatimCommandsAndLogs(t *testing.T) {
	resolver := newResolver(t)
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	b := bus.NewMemoryBus()

	var fanPayload []byte
	_, _ = b.Subscribe(context.Background(), "f1/z1/cmd/fan", func(_ context.Context, msg bus.Message) {
		fanPayload = msg.Payload
	})

	e := New(b, resolver, store, nil, testLogger())
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	plan := model.Plan{
		FarmID: "f1",
		Zone:   "z1",
		Actions: []model.Action{
			{Actuator: model.ActuatorFan, Priority: 1, Command: map[string]any{"action": "SET", "level": 55}},
		},
	}
	payload, _ := json.Marshal(plan)
	_ = b.Publish(context.Background(), "f1/z1/plan", payload)

	var got map[string]any
	if err := json.Unmarshal(fanPayload, &got); err != nil {
		t.Fatalf("unmarshal fan payload: %v", err)
	}
	if got["level"].(float64) != 55 {
		t.Fatalf("expected verbatim fan command level 55, got %v", got)
	}

	rec, ok := store.GetLatestCommand("f1", "z1", model.ActuatorFan)
	if !ok {
		t.Fatalf("expected fan command to be archived to knowledge")
	}
	// action.Command travels through JSON (plan -> bus -> executor), so
	// numeric fields decode as float64, not int.
	if rec.Command["level"].(float64) != 55 {
		t.Fatalf("expected archived command level 55, got %v", rec.Command)
	}
}

func TestOnPlanDropsMalformedPayload(t *testing.T) {
	resolver := newResolver(t)
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	b := bus.NewMemoryBus()

	e := New(b, resolver, store, nil, testLogger())
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Should not panic.
	_ = b.Publish(context.Background(), "f1/z1/plan", []byte("not json"))
}
