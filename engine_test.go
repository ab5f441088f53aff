package orderq

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tbourn/go-order-backend/internal/config"
)

// testConfig is the minimal valid configuration pointed at a throwaway db.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		LogLevel:    "error",
		DBPath:      filepath.Join(t.TempDir(), "engine.db"),
		UndoDepth:   3,
		GracePeriod: 30 * time.Minute,
		SessionTTL:  time.Minute,
	}
}

func TestOpenAndClose(t *testing.T) {
	ctx := context.Background()

	e, err := Open(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if e.Queue == nil || e.Categories == nil || e.Group == nil || e.Authority == nil || e.Retention == nil || e.Sessions == nil || e.Undo == nil {
		t.Fatalf("engine wiring incomplete: %+v", e)
	}
	if err := e.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_EndToEnd(t *testing.T) {
	ctx := context.Background()
	e, err := Open(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = e.Close(ctx) })

	r, err := e.Group.Enable(ctx, "tenant", "master")
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	id, err := e.Queue.Enqueue(ctx, r.ID, "alice", "Alice", "first ticket", 0)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if ok, err := e.Queue.Finish(ctx, "master", id, []int64{r.ID}, ""); err != nil || !ok {
		t.Fatalf("Finish: ok=%v err=%v", ok, err)
	}
	if _, err := e.Undo.PopAndRun(ctx, "master"); err != nil {
		t.Fatalf("PopAndRun: %v", err)
	}

	if err := e.Tick(ctx, func(string) bool { return true }); err != nil {
		t.Fatalf("Tick: %v", err)
	}
}

func TestOpen_BadDBPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = filepath.Join(t.TempDir(), "missing", "engine.db")
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}
