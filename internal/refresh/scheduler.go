package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stock-watch/internal/market"
)

var ErrWorkerUnavailable = errors.New("refresh worker unavailable")

const (
	DefaultTimeout      = 10 * time.Second
	DefaultResultBuffer = 64
)

type Request struct {
	ID    string
	Codes []string
}

// Result is published once per processed request. Exactly one of Quotes and
// Err is meaningful.
type Result struct {
	RequestID string
	Quotes    []market.Quote
	Err       error
	FetchedAt time.Time
}

func (r Result) OK() bool { return r.Err == nil }

// Recorder receives every successful batch from the worker goroutine.
type Recorder interface {
	Record(ctx context.Context, quotes []market.Quote, at time.Time) error
}

type Option func(*Scheduler)

func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithResultBuffer(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.resultBuffer = n
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// Scheduler owns the single background worker. The foreground calls
// RequestRefresh and Drain; neither blocks. At most one request is queued
// behind the one in flight, and a newer request replaces a queued one.
type Scheduler struct {
	fetcher      market.Fetcher
	recorder     Recorder
	timeout      time.Duration
	resultBuffer int
	log          *zap.Logger

	requests chan Request
	results  chan Result
	stop     chan struct{}
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc

	closeOnce sync.Once
}

func New(fetcher market.Fetcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:      fetcher,
		timeout:      DefaultTimeout,
		resultBuffer: DefaultResultBuffer,
		log:          zap.NewNop(),
		requests:     make(chan Request, 1),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.results = make(chan Result, s.resultBuffer)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	go s.run()
	return s
}

// RequestRefresh queues a fetch of codes without blocking. It reports
// ErrWorkerUnavailable once the worker has exited.
func (s *Scheduler) RequestRefresh(codes []string) error {
	select {
	case <-s.done:
		return ErrWorkerUnavailable
	case <-s.stop:
		return ErrWorkerUnavailable
	default:
	}

	req := Request{ID: uuid.NewString(), Codes: append([]string(nil), codes...)}
	select {
	case s.requests <- req:
		return nil
	default:
	}

	// A request is already pending: replace it with the newer code set.
	select {
	case stale := <-s.requests:
		s.log.Debug("refresh request coalesced", zap.String("dropped_id", stale.ID), zap.String("request_id", req.ID))
	default:
	}
	select {
	case s.requests <- req:
	default:
		s.log.Debug("refresh request dropped", zap.String("request_id", req.ID))
	}
	return nil
}

// Drain returns every result published since the last call.
func (s *Scheduler) Drain() []Result {
	var out []Result
	for {
		select {
		case r := <-s.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Close stops the worker. A fetch in flight is cancelled and its result discarded.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.cancel()
	})
}

// Done is closed when the worker has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

func (s *Scheduler) run() {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("refresh worker terminated", zap.Any("panic", r))
		}
	}()

	for {
		select {
		case <-s.stop:
			return
		case req := <-s.requests:
			res := s.process(req)
			select {
			case s.results <- res:
			case <-s.stop:
				return
			}
		}
	}
}

func (s *Scheduler) process(req Request) Result {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	quotes, err := s.fetcher.Fetch(ctx, req.Codes)
	res := Result{RequestID: req.ID, FetchedAt: time.Now()}
	if err != nil {
		s.log.Warn("refresh failed",
			zap.String("request_id", req.ID),
			zap.Int("codes", len(req.Codes)),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		res.Err = fmt.Errorf("refresh: %w", err)
		return res
	}
	s.log.Debug("refresh done",
		zap.String("request_id", req.ID),
		zap.Int("codes", len(req.Codes)),
		zap.Int("quotes", len(quotes)),
		zap.Duration("took", time.Since(start)),
	)
	res.Quotes = quotes

	if s.recorder != nil && len(quotes) > 0 {
		if err := s.recorder.Record(ctx, quotes, res.FetchedAt); err != nil {
			s.log.Warn("record snapshots failed", zap.String("request_id", req.ID), zap.Error(err))
		}
	}
	return res
}
