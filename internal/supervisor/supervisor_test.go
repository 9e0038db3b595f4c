package supervisor

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"poultrymapek/internal/bus"
	"poultrymapek/internal/topology"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeTopology(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "system_config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write topology: %v", err)
	}
	return path
}

func TestReconcileStartsAndStopsZoneWorkers(t *testing.T) {
	path := writeTopology(t, `{"farms":[{"id":"f1","zones":["z1","z2"]}]}`)
	resolver := topology.NewResolver(path)
	b := bus.NewMemoryBus()
	sup := New(b, resolver, nil, 1.0, 5.0, testLogger())
	ctx := context.Background()

	sup.Reconcile(ctx, resolver.Document())
	if sup.ActiveCount() != 2 {
		t.Fatalf("expected 2 active zone workers, got %d", sup.ActiveCount())
	}

	// Re-reconciling the same document is idempotent.
	sup.Reconcile(ctx, resolver.Document())
	if sup.ActiveCount() != 2 {
		t.Fatalf("expected reconcile to be idempotent, got %d", sup.ActiveCount())
	}

	shrunk, err := topology.Parse([]byte(`{"farms":[{"id":"f1","zones":["z1"]}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sup.Reconcile(ctx, shrunk)
	if sup.ActiveCount() != 1 {
		t.Fatalf("expected z2's worker to be stopped, got %d active", sup.ActiveCount())
	}

	sup.StopAll()
	if sup.ActiveCount() != 0 {
		t.Fatalf("expected StopAll to clear all workers, got %d", sup.ActiveCount())
	}
}
