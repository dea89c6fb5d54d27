package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/printware/printdesk/internal/domain/model"
	testhelpers "github.com/printware/printdesk/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewSplitProcessorDefaults(t *testing.T) {
	proc := NewSplitProcessor(&testhelpers.WorkerFacadeStub{}, time.Second, 0, 0, discardLogger())
	if proc.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", proc.batchSize)
	}
	if proc.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", proc.workers)
	}
}

func TestSplitProcessorSplitsBulkOrder(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{Batches: [][]model.BulkOrder{{
		{ID: "b1", Status: model.BulkOrderStatusSplitting, Payload: []byte("Card A,10\nFlyer B,20\n")},
	}}}
	proc := NewSplitProcessor(facade, 10*time.Millisecond, 1, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		done := len(facade.Completed) > 0
		facade.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for split completion")
		case <-time.After(10 * time.Millisecond):
		}
	}

	proc.Stop()
	facade.Lock()
	defer facade.Unlock()

	if len(facade.Processing) == 0 || facade.Processing[0] != "b1" {
		t.Fatalf("expected PROCESSING transition before completion, got %v", facade.Processing)
	}
	call := facade.Completed[0]
	if call.BulkOrderID != "b1" {
		t.Fatalf("unexpected bulk order completed: %s", call.BulkOrderID)
	}
	if len(call.Designs) != 2 || call.Designs[0].Copies != 10 || call.Designs[1].Copies != 20 {
		t.Fatalf("unexpected designs extracted: %+v", call.Designs)
	}
	if len(facade.Failed) != 0 {
		t.Fatalf("no failure expected, got %v", facade.Failed)
	}
}

func TestSplitProcessorFailsOnBadManifest(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{Batches: [][]model.BulkOrder{{
		{ID: "b1", Status: model.BulkOrderStatusSplitting, Payload: []byte("not a manifest")},
	}}}
	proc := NewSplitProcessor(facade, 10*time.Millisecond, 1, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		failed := len(facade.Failed) > 0
		facade.Unlock()
		if failed {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for failure handling")
		case <-time.After(10 * time.Millisecond):
		}
	}

	proc.Stop()
	facade.Lock()
	defer facade.Unlock()

	if facade.Failed[0].BulkOrderID != "b1" || facade.Failed[0].Reason == "" {
		t.Fatalf("expected failure with reason, got %+v", facade.Failed[0])
	}
	if len(facade.Completed) != 0 {
		t.Fatalf("failed split must not complete, got %v", facade.Completed)
	}
	if len(facade.Processing) != 0 {
		t.Fatalf("manifest failure should short-circuit before PROCESSING, got %v", facade.Processing)
	}
}

func TestSplitProcessorStops(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{}
	proc := NewSplitProcessor(facade, 5*time.Millisecond, 2, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	proc.Stop()
}
