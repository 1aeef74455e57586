package vcs

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/event"
	"github.com/dshills/statusicons/internal/logging"
	"github.com/dshills/statusicons/internal/metrics"
)

// Default fetcher tuning.
const (
	DefaultWorkers   = 1
	DefaultQueueSize = 1024
	DefaultBatchSize = 64
)

type request struct {
	path string
	tier Tier
}

// Fetcher owns the status cache. Reads never block on I/O; escalation
// requests are queued and resolved by background workers that publish
// StatusCompleted on the bus when a batch lands.
type Fetcher struct {
	backend Backend
	bus     event.Bus
	log     *zap.Logger

	workers   int
	batchSize int
	queue     chan request

	mu    sync.RWMutex
	cache map[string]Status

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBus sets the bus completions are published on.
func WithBus(b event.Bus) Option {
	return func(f *Fetcher) {
		f.bus = b
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		f.log = logging.OrNop(l)
	}
}

// WithWorkers sets the number of fetch workers.
func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithQueueSize sets the request queue capacity. Requests beyond it are
// dropped and the entry returns to its previous level.
func WithQueueSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.queue = make(chan request, n)
		}
	}
}

// WithBatchSize caps how many queued paths one backend call handles.
func WithBatchSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// NewFetcher creates a fetcher over backend. Call Start before requests
// can complete.
func NewFetcher(backend Backend, opts ...Option) *Fetcher {
	f := &Fetcher{
		backend:   backend,
		log:       zap.NewNop(),
		workers:   DefaultWorkers,
		batchSize: DefaultBatchSize,
		queue:     make(chan request, DefaultQueueSize),
		cache:     make(map[string]Status),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Status returns the cached status for path. Unknown paths report
// LevelNone with the path filled in.
func (f *Fetcher) Status(path string) Status {
	f.mu.RLock()
	st, ok := f.cache[path]
	f.mu.RUnlock()
	if !ok {
		return Status{AssetPath: path, ReflectionLevel: LevelNone}
	}
	return st
}

// RequestStatus asks for path to reach tier. It never blocks: the entry
// is marked LevelPending and queued. Requests for entries that are
// already pending, or already at or above the target, are ignored.
func (f *Fetcher) RequestStatus(path string, tier Tier) {
	f.mu.Lock()
	st, ok := f.cache[path]
	if !ok {
		st = Status{AssetPath: path}
	}
	if st.ReflectionLevel == LevelPending || st.ReflectionLevel >= tier.Target() {
		f.mu.Unlock()
		return
	}
	prev := st.ReflectionLevel
	st.ReflectionLevel = LevelPending
	f.cache[path] = st
	f.mu.Unlock()

	select {
	case f.queue <- request{path: path, tier: tier}:
	default:
		f.mu.Lock()
		if cur, ok := f.cache[path]; ok && cur.ReflectionLevel == LevelPending {
			cur.ReflectionLevel = prev
			f.cache[path] = cur
		}
		f.mu.Unlock()
		metrics.RecordDropped()
		f.log.Warn("status request dropped, queue full", zap.String("path", path), zap.Stringer("tier", tier))
	}
}

// Invalidate drops the given paths back to LevelNone, or the whole cache
// when no path is given, and publishes StatusInvalidated.
func (f *Fetcher) Invalidate(ctx context.Context, paths ...string) {
	f.mu.Lock()
	if len(paths) == 0 {
		for p, st := range f.cache {
			if st.ReflectionLevel != LevelPending {
				delete(f.cache, p)
			}
		}
	} else {
		for _, p := range paths {
			if st, ok := f.cache[p]; ok && st.ReflectionLevel != LevelPending {
				delete(f.cache, p)
			}
		}
	}
	f.mu.Unlock()

	f.publish(ctx, StatusInvalidated{Paths: paths})
}

// Pending returns how many entries are waiting on a fetch.
func (f *Fetcher) Pending() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := 0
	for _, st := range f.cache {
		if st.ReflectionLevel == LevelPending {
			n++
		}
	}
	return n
}

// Snapshot returns all cached statuses ordered by path.
func (f *Fetcher) Snapshot() []Status {
	f.mu.RLock()
	out := make([]Status, 0, len(f.cache))
	for _, st := range f.cache {
		out = append(out, st)
	}
	f.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].AssetPath < out[j].AssetPath })
	return out
}

// Start launches the workers. They run until ctx is done or Stop is called.
func (f *Fetcher) Start(ctx context.Context) error {
	f.runMu.Lock()
	defer f.runMu.Unlock()
	if f.running {
		return ErrFetcherRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.running = true

	for i := 0; i < f.workers; i++ {
		f.wg.Add(1)
		go f.worker(ctx)
	}
	f.log.Debug("fetcher started", zap.Int("workers", f.workers))
	return nil
}

// Stop cancels the workers and waits for them to exit. Entries left
// pending stay pending until the next Invalidate.
func (f *Fetcher) Stop() {
	f.runMu.Lock()
	if !f.running {
		f.runMu.Unlock()
		return
	}
	f.cancel()
	f.running = false
	f.runMu.Unlock()

	f.wg.Wait()
	f.log.Debug("fetcher stopped")
}

func (f *Fetcher) worker(ctx context.Context) {
	defer f.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-f.queue:
			batch := f.drain(req)
			f.process(ctx, TierLocal, batch[TierLocal])
			f.process(ctx, TierRemote, batch[TierRemote])
		}
	}
}

// drain collects whatever else is queued, up to the batch size, grouped
// by tier.
func (f *Fetcher) drain(first request) map[Tier][]string {
	batch := map[Tier][]string{first.tier: {first.path}}
	for n := 1; n < f.batchSize; n++ {
		select {
		case req := <-f.queue:
			batch[req.tier] = append(batch[req.tier], req.path)
		default:
			return batch
		}
	}
	return batch
}

func (f *Fetcher) process(ctx context.Context, tier Tier, paths []string) {
	if len(paths) == 0 {
		return
	}

	start := time.Now()
	local, err := f.backend.Local(ctx, paths)
	var remote map[string]bool
	if err == nil && tier == TierRemote {
		remote, err = f.backend.Remote(ctx, paths)
	}
	metrics.RecordFetch(tier.String(), time.Since(start), err)

	f.mu.Lock()
	for _, p := range paths {
		if err != nil {
			if st, ok := f.cache[p]; ok && st.ReflectionLevel == LevelPending {
				st.ReflectionLevel = LevelNone
				f.cache[p] = st
			}
			continue
		}
		ls := local[p]
		f.cache[p] = Status{
			AssetPath:       p,
			ReflectionLevel: tier.Target(),
			Kind:            ls.Kind,
			Staged:          ls.Staged,
			OutOfDate:       remote[p],
		}
	}
	f.mu.Unlock()

	if err != nil {
		f.log.Warn("status fetch failed",
			zap.Stringer("tier", tier),
			zap.Int("paths", len(paths)),
			zap.Error(err))
	} else {
		f.log.Debug("status fetch completed",
			zap.Stringer("tier", tier),
			zap.Int("paths", len(paths)),
			zap.Duration("took", time.Since(start)))
	}

	f.publish(ctx, StatusCompleted{Tier: tier, Paths: paths, Err: err})
}

func (f *Fetcher) publish(ctx context.Context, ev event.TopicProvider) {
	if f.bus == nil {
		return
	}
	if err := f.bus.Publish(context.WithoutCancel(ctx), ev); err != nil {
		f.log.Warn("publishing status event", zap.Stringer("topic", ev.EventTopic()), zap.Error(err))
	}
}
