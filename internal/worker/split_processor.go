package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/usecase"
)

// SplitFacade exposes the subset of application functionality required by the
// split worker.
type SplitFacade interface {
	ClaimBulkOrders(ctx context.Context, limit int) ([]model.BulkOrder, error)
	MarkProcessing(ctx context.Context, bulkOrderID string) error
	CompleteSplit(ctx context.Context, bulkOrderID string, designs []model.DesignSpec) (*model.BulkStatus, error)
	FailSplit(ctx context.Context, bulkOrderID, reason string) error
}

// SplitProcessor consumes uploaded composite files and splits them into child
// orders, advancing each bulk order through the pipeline states. Claiming a
// record already moves it UPLOADED -> SPLITTING; the processor performs the
// remaining transitions.
type SplitProcessor struct {
	facade       SplitFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.BulkOrder
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSplitProcessor constructs the split worker pool.
func NewSplitProcessor(facade SplitFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *SplitProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &SplitProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.BulkOrder, batchSize*workers),
	}
}

// Start launches background processing.
func (p *SplitProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *SplitProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *SplitProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.claimAndDispatch(ctx)
		}
	}
}

func (p *SplitProcessor) claimAndDispatch(ctx context.Context) {
	bulks, err := p.facade.ClaimBulkOrders(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("claim bulk orders failed", slog.String("error", err.Error()))
		return
	}
	for _, bulk := range bulks {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- bulk:
		}
	}
}

func (p *SplitProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case bulk, ok := <-p.jobs:
			if !ok {
				return
			}
			p.split(ctx, bulk)
		}
	}
}

// split runs the state machine for one claimed bulk order. Any unrecoverable
// error moves the record to FAILED with a reason; no partial child orders
// become visible because child creation and completion share one transaction.
func (p *SplitProcessor) split(ctx context.Context, bulk model.BulkOrder) {
	designs, err := usecase.ParseManifest(bulk.Payload)
	if err != nil {
		p.fail(ctx, bulk.ID, err.Error())
		return
	}

	if err := p.facade.MarkProcessing(ctx, bulk.ID); err != nil {
		p.logger.Error("mark processing failed",
			slog.String("bulk_order", bulk.ID), slog.String("error", err.Error()))
		return
	}

	snap, err := p.facade.CompleteSplit(ctx, bulk.ID, designs)
	if err != nil {
		p.fail(ctx, bulk.ID, "persist child orders: "+err.Error())
		return
	}

	p.logger.Info("bulk order split",
		slog.String("bulk_order", bulk.ID),
		slog.String("status", string(snap.Status)),
		slog.Int("distinct_designs", snap.DistinctDesigns),
		slog.Int("total_copies", snap.TotalCopies),
	)
}

func (p *SplitProcessor) fail(ctx context.Context, bulkOrderID, reason string) {
	if err := p.facade.FailSplit(ctx, bulkOrderID, reason); err != nil {
		p.logger.Error("mark bulk order failed",
			slog.String("bulk_order", bulkOrderID), slog.String("error", err.Error()))
		return
	}
	p.logger.Warn("bulk order split failed",
		slog.String("bulk_order", bulkOrderID), slog.String("reason", reason))
}
