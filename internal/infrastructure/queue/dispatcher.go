package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api/metrics"
	"github.com/99minutos/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	removeTimeout  = 30 * time.Second
)

// Remover deletes a stored avatar by URL.
type Remover interface {
	Remove(ctx context.Context, url string) error
}

// Dispatcher removes superseded avatars in the background. Jobs are sharded by
// account id so removals for one account run in submission order.
type Dispatcher struct {
	workers []chan ports.AvatarCleanup
	store   Remover
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, store Remover, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.AvatarCleanup, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AvatarCleanup, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker owning its account. It never blocks: when
// the shard is full the job is dropped and the asset is left behind.
func (d *Dispatcher) Enqueue(job ports.AvatarCleanup) {
	idx := d.shardIndex(job.AccountID)
	select {
	case d.workers[idx] <- job:
		metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.AvatarCleanupsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("account_id", job.AccountID).
			Str("url", job.URL).
			Int("worker_id", idx).
			Msg("avatar cleanup queue full, dropping job")
	}
}

func (d *Dispatcher) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AvatarCleanup) {
	depth := metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.process(ctx, id, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, id int, job ports.AvatarCleanup) {
	ctx, cancel := context.WithTimeout(ctx, removeTimeout)
	defer cancel()

	if err := d.store.Remove(ctx, job.URL); err != nil {
		metrics.AvatarCleanupsTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("account_id", job.AccountID).
			Str("url", job.URL).
			Int("worker_id", id).
			Msg("avatar cleanup failed")
		return
	}
	metrics.AvatarCleanupsTotal.WithLabelValues("removed").Inc()
}
