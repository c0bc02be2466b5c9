// Package pipeline persists leads: validation, de-duplication and batched
// writes to an OutputWriter behind a bounded queue.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-equipment-catalog/config"
	"github.com/aluiziolira/go-equipment-catalog/metrics"
	"github.com/aluiziolira/go-equipment-catalog/models"
	"github.com/aluiziolira/go-equipment-catalog/parser"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
	// ErrPipelineCloseTimeout is returned when workers do not drain in time.
	ErrPipelineCloseTimeout = errors.New("pipeline: close timed out")
)

// drainTimeout bounds how long Close waits for queued leads.
var drainTimeout = 10 * time.Second

// OutputWriter defines the interface for lead output.
type OutputWriter interface {
	Write(leads []*models.Lead) error
	Close() error
}

// Pipeline coordinates validation, de-duplication, and output writing.
type Pipeline struct {
	ctx       context.Context
	writer    OutputWriter
	leadCh    chan *models.Lead
	batchSize int
	prom      *metrics.Metrics

	wg sync.WaitGroup

	seen *lru.Cache[string, struct{}]

	counters counters

	mu     sync.Mutex // guards closed/err
	closed bool
	err    error

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline sized from cfg. ctx bounds background
// reporting.
func NewPipeline(ctx context.Context, writer OutputWriter, cfg *config.Config) *Pipeline {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 1
	}
	seen, err := lru.New[string, struct{}](max(cfg.DedupeMaxSize, 1))
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Pipeline{
		ctx:       ctx,
		writer:    writer,
		leadCh:    make(chan *models.Lead, max(cfg.PipelineBufferSize, 1)),
		batchSize: batch,
		seen:      seen,
		counters:  newCounters(),
		shutdown:  make(chan struct{}),
	}
}

// WithMetrics reports lead outcomes to m.
func (p *Pipeline) WithMetrics(m *metrics.Metrics) *Pipeline {
	p.prom = m
	return p
}

// Start launches worker goroutines.
func (p *Pipeline) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Process enqueues leads. It blocks while the queue is full until ctx is done.
func (p *Pipeline) Process(ctx context.Context, leads ...*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	closed, err := p.state()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPipelineClosed, err)
	}
	if closed {
		return ErrPipelineClosed
	}

	for _, lead := range leads {
		if lead == nil {
			continue
		}
		if err := p.enqueue(ctx, lead); err != nil {
			return err
		}
	}
	return nil
}

// Close stops accepting leads and waits for queued ones to be written.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.leadCh)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.Err()
	case <-time.After(drainTimeout):
		return ErrPipelineCloseTimeout
	}
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.counters.snapshot()
}

// StartMetricsReporting emits periodic progress logs.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snap := p.GetMetrics()
				processed := snap["processed_leads"].(int64)
				validation := snap["validation_errors"].(map[string]int)
				slog.Info("lead pipeline progress",
					slog.Int64("processed", processed),
					slog.Any("validation_errors", validation),
					slog.Int("queued", len(p.leadCh)),
				)
			case <-p.shutdown:
				return
			case <-p.ctx.Done():
				return
			}
		}
	}()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	batch := make([]*models.Lead, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.Write(batch); err != nil {
			p.prom.IncLead("write_error")
			return err
		}
		for range batch {
			p.prom.IncLead("written")
		}
		batch = batch[:0]
		return nil
	}

	for lead := range p.leadCh {
		prepared := p.prepare(lead)
		if prepared == nil {
			continue
		}
		batch = append(batch, prepared)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				p.setErr(fmt.Errorf("write batch: %w", err))
				return
			}
		}
	}

	if err := flush(); err != nil {
		p.setErr(fmt.Errorf("write batch: %w", err))
	}
}

func (p *Pipeline) prepare(lead *models.Lead) *models.Lead {
	parser.NormalizeLead(lead)
	if err := parser.ValidateLead(lead); err != nil {
		p.counters.addValidation("invalid_record")
		p.prom.IncLead("invalid")
		slog.Debug("dropping invalid lead", slog.String("id", lead.ID), slog.Any("error", err))
		return nil
	}

	key := lead.Phone + "|" + lead.ItemID
	if ok, _ := p.seen.ContainsOrAdd(key, struct{}{}); ok {
		p.counters.addValidation("duplicate_lead")
		p.prom.IncLead("duplicate")
		slog.Debug("dropping duplicate lead", slog.String("id", lead.ID), slog.String("item_id", lead.ItemID))
		return nil
	}

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	p.counters.incrementProcessed()
	return lead
}

func (p *Pipeline) enqueue(ctx context.Context, lead *models.Lead) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.leadCh <- lead:
		return nil
	}
}

func (p *Pipeline) setErr(err error) {
	if err == nil {
		return
	}

	p.mu.Lock()
	if p.err != nil {
		p.mu.Unlock()
		return
	}
	p.err = err
	p.closed = true
	p.mu.Unlock()

	slog.Error("lead pipeline stopped", slog.Any("error", err))
	p.signalShutdown()
	p.closeOnce.Do(func() {
		close(p.leadCh)
	})
}

func (p *Pipeline) state() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed, p.err
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type counters struct {
	mu         sync.Mutex
	processed  int64
	validation map[string]int
}

func newCounters() counters {
	return counters{
		validation: make(map[string]int),
	}
}

func (c *counters) incrementProcessed() {
	c.mu.Lock()
	c.processed++
	c.mu.Unlock()
}

func (c *counters) addValidation(kind string) {
	c.mu.Lock()
	c.validation[kind]++
	c.mu.Unlock()
}

func (c *counters) snapshot() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	copyValidation := make(map[string]int, len(c.validation))
	for k, v := range c.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_leads":   c.processed,
		"validation_errors": copyValidation,
	}
}
