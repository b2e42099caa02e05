// Package session owns the in-memory record store and the versioned
// analysis coordinator: every data or filter change dispatches a
// sequence-numbered request to a single background worker, and only the
// result of the newest request is ever observed, even though superseded
// requests still run to completion.
package session

import (
	"context"
	"fmt"
	"sync"

	"go-delivery-analytics/internal/analytics"
	"go-delivery-analytics/internal/model"
)

// request pairs a monotonic sequence number with a by-reference snapshot of
// the record set and the filter at the moment of dispatch.
type request struct {
	seq     uint64
	tickets []model.Ticket
	filter  model.Filter
}

type waiter struct {
	target uint64
	ch     chan struct{}
}

// Session is an explicitly constructed analysis session: the ticket store,
// the active filter, the FIFO request queue and the latest settled
// snapshot. All methods are safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	tickets []model.Ticket
	filter  model.Filter

	queue      []request // FIFO, consumed by the one worker goroutine
	seq        uint64    // last dispatched sequence number
	finished   uint64    // last finished sequence number (the watermark)
	current    *analytics.Result
	currentSeq uint64
	failure    error // failure of the most recent finished request, nil on success
	waiters    []waiter

	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New() *Session {
	s := &Session{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start spawns the background analysis worker. Only the first call succeeds.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("session already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.wg.Add(1)
	go s.workerLoop()
	return nil
}

// Stop shuts the worker down and waits for it to exit. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.cancel()
	s.cond.Broadcast()
	s.wg.Wait()
}

// ReplaceTickets swaps the record set wholesale (a new source file was
// loaded) and dispatches a fresh analysis request. Returns the dispatched
// sequence number.
func (s *Session) ReplaceTickets(tickets []model.Ticket) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = tickets
	return s.dispatchLocked()
}

// AppendTickets adds one ingestion batch and dispatches a fresh analysis
// request. The append copies the backing array, so a pass already in flight
// keeps reading its own unmutated snapshot.
func (s *Session) AppendTickets(batch []model.Ticket) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	grown := make([]model.Ticket, 0, len(s.tickets)+len(batch))
	grown = append(grown, s.tickets...)
	grown = append(grown, batch...)
	s.tickets = grown
	return s.dispatchLocked()
}

// SetFilter installs a new filter spec and dispatches a fresh analysis
// request. The previous in-flight request is not cancelled; its result will
// simply be superseded.
func (s *Session) SetFilter(f model.Filter) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return s.dispatchLocked()
}

func (s *Session) dispatchLocked() uint64 {
	s.seq++
	s.queue = append(s.queue, request{seq: s.seq, tickets: s.tickets, filter: s.filter})
	s.cond.Signal()
	return s.seq
}

// Snapshot returns the latest settled aggregate result and its sequence
// number. The result is a read-only snapshot; nil until the first request
// settles.
func (s *Session) Snapshot() (*analytics.Result, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.currentSeq
}

// Tickets returns the current record set. Callers must treat it as
// read-only.
func (s *Session) Tickets() []model.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets
}

// Filter returns the active filter spec.
func (s *Session) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Sequences returns the last dispatched and last finished sequence numbers.
func (s *Session) Sequences() (dispatched, finished uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq, s.finished
}

// Wait blocks until every request dispatched before the call has finished,
// then reports the failure of the most recent finished request, if any. A
// caller whose target was already reached resolves immediately. Waiters are
// released even when the computation failed, never left hanging.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	target := s.seq
	if s.finished >= target {
		err := s.failure
		s.mu.Unlock()
		return err
	}
	w := waiter{target: target, ch: make(chan struct{})}
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ch:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// workerLoop consumes the request queue in strict FIFO submission order; no
// reordering and never more than one pass in flight. This is what makes
// "most recent result received" equal "most recent request dispatched" once
// the queue drains.
func (s *Session) workerLoop() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 {
			if s.ctx.Err() != nil {
				s.mu.Unlock()
				return
			}
			s.cond.Wait()
		}
		if s.ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		req := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		res, err := safeCompute(req)
		s.deliver(req.seq, res, err)
	}
}

// safeCompute isolates the engine pass: a panic becomes a distinct failure
// event instead of taking the worker down.
func safeCompute(req request) (res *analytics.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis %d crashed: %v", req.seq, r)
		}
	}()
	return analytics.Compute(req.tickets, req.filter), nil
}

// deliver advances the finished watermark unconditionally (sequence numbers
// only increase and arrive in FIFO order), applies a successful result as
// the visible snapshot, keeps the previous snapshot on failure, and
// releases every waiter whose target the watermark has reached.
func (s *Session) deliver(seq uint64, res *analytics.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished = seq
	if err != nil {
		s.failure = err
	} else {
		s.failure = nil
		s.current = res
		s.currentSeq = seq
	}

	remaining := s.waiters[:0]
	for _, w := range s.waiters {
		if w.target <= s.finished {
			close(w.ch)
		} else {
			remaining = append(remaining, w)
		}
	}
	s.waiters = remaining
}
