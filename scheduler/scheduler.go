// Package scheduler runs the optional background sweeps that reap
// expired friend requests and project invitations. Expiry is enforced
// lazily on access; the sweeper only trims rows nobody touched again,
// reusing the same delete path, so it is safe to run never, once, or
// repeatedly.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SweepFn deletes expired rows and reports how many went away.
type SweepFn func(ctx context.Context) (int64, error)

// Sweeper runs registered sweeps on a fixed interval.
type Sweeper struct {
	mu     sync.Mutex
	sweeps map[string]SweepFn
	order  []string
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a Sweeper. Nothing runs until Start.
func New(logger *zap.Logger) *Sweeper {
	return &Sweeper{
		sweeps: make(map[string]SweepFn),
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

// Register adds a named sweep. Registering the same name again
// replaces the function; sweeps run in registration order.
func (s *Sweeper) Register(name string, fn SweepFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sweeps[name]; !ok {
		s.order = append(s.order, name)
	}
	s.sweeps[name] = fn
}

// Names returns the registered sweep names in run order.
func (s *Sweeper) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Start launches the ticker loop. A non-positive interval disables the
// sweeper entirely (the lazy on-access reap still applies).
func (s *Sweeper) Start(interval time.Duration) {
	if interval <= 0 {
		s.logger.Info("expiry sweeper disabled")
		return
	}
	s.wg.Add(1)
	go s.loop(interval)
	s.logger.Info("expiry sweeper started", zap.Duration("interval", interval))
}

// Stop halts the loop and waits for an in-flight pass to finish.
// Safe to call more than once, or without Start.
func (s *Sweeper) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}

func (s *Sweeper) loop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce executes every registered sweep one time. A failing or
// panicking sweep is logged and does not stop the others.
func (s *Sweeper) RunOnce(ctx context.Context) {
	s.mu.Lock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	fns := make([]SweepFn, len(names))
	for i, name := range names {
		fns[i] = s.sweeps[name]
	}
	s.mu.Unlock()

	for i, fn := range fns {
		s.runSweep(ctx, names[i], fn)
	}
}

func (s *Sweeper) runSweep(ctx context.Context, name string, fn SweepFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep panicked",
				zap.String("sweep", name),
				zap.Any("recover", r))
		}
	}()
	n, err := fn(ctx)
	if err != nil {
		s.logger.Error("sweep failed", zap.String("sweep", name), zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("sweep reaped rows",
			zap.String("sweep", name),
			zap.Int64("rows", n))
	}
}
