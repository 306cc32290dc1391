package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/ports"
	"github.com/bandq/devconsole/internal/pkg/metrics"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
)

// AuditDispatcher fans audit records out to a fixed set of workers, sharded
// by caller id so one operator's records are written in order. Record never
// blocks; when a worker's queue is full the record is dropped and counted.
type AuditDispatcher struct {
	workers []chan domain.ImpersonationAudit
	repo    ports.AuditRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	return newAuditDispatcher(numWorkers, channelBuffer, repo, log)
}

func newAuditDispatcher(numWorkers, buffer int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.ImpersonationAudit, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ImpersonationAudit, buffer)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled or after
// Close has drained their queues.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues a record for the worker that owns its caller.
func (d *AuditDispatcher) Record(record domain.ImpersonationAudit) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
		return
	}

	idx := d.shardIndex(record.CallerID)
	select {
	case d.workers[idx] <- record:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditRecordsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("caller_id", record.CallerID).
			Str("target_user_id", record.TargetUserID).
			Int("worker_id", idx).
			Msg("audit queue full, record dropped")
	}
}

// Close stops accepting records and waits for queued ones to be written.
func (d *AuditDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a caller id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(callerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(callerID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ImpersonationAudit) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case record, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.repo.Insert(ctx, record); err != nil {
				metrics.AuditRecordsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("caller_id", record.CallerID).
					Str("target_user_id", record.TargetUserID).
					Int("worker_id", id).
					Msg("audit write failed")
				continue
			}
			metrics.AuditRecordsTotal.WithLabelValues("written").Inc()
		}
	}
}
