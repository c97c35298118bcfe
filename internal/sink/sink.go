// Package sink persists the raw bar stream. A Sink owns exactly one Backend
// and serializes all access through a request channel, so no write or flush
// ever interleaves with another.
package sink

import (
	"context"
	"sync"

	"github.com/yanun0323/errors"

	"main/internal/model"
)

var (
	ErrClosed         = errors.New("sink closed")
	ErrNotStarted     = errors.New("sink not started")
	ErrAlreadyStarted = errors.New("sink already started")
)

// Backend is one persistence target. Implementations are not safe for
// concurrent use; the Sink is their single caller.
type Backend interface {
	Write(k model.Kline) error
	Flush() error
	Close() error
}

type opKind uint8

const (
	opWrite opKind = iota + 1
	opFlush
)

type request struct {
	op    opKind
	kline model.Kline
	reply chan error
}

// Sink runs a Backend behind a single service goroutine. The mutex makes the
// closed check and the channel send one step, so Close can never close the
// request channel under an in-flight send.
type Sink struct {
	backend Backend
	ch      chan request
	wg      sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

// New wraps a backend. The queue size bounds how many callers can be waiting
// on the service goroutine at once.
func New(backend Backend, queueSize int) *Sink {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Sink{
		backend: backend,
		ch:      make(chan request, queueSize),
	}
}

// Start runs the service loop in a new goroutine.
func (s *Sink) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
	return nil
}

// Write persists one bar, blocking until the service goroutine has handed
// the record to the backend and reported the result.
func (s *Sink) Write(ctx context.Context, k model.Kline) error {
	return s.do(ctx, request{op: opWrite, kline: k, reply: make(chan error, 1)})
}

// Flush asks the backend to make everything written so far durable.
func (s *Sink) Flush(ctx context.Context) error {
	return s.do(ctx, request{op: opFlush, reply: make(chan error, 1)})
}

func (s *Sink) do(ctx context.Context, req request) error {
	if err := s.send(ctx, req); err != nil {
		return err
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send holds the read lock across the closed check and the channel send; the
// service goroutine keeps draining independently, so the send cannot wedge
// Close out forever.
func (s *Sink) send(ctx context.Context, req request) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	if s.closed {
		return ErrClosed
	}

	select {
	case s.ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending requests, closes the backend and returns its error.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.wg.Wait()
	return s.backend.Close()
}

func (s *Sink) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drainNonBlocking()
			return
		case req, ok := <-s.ch:
			if !ok {
				return
			}
			s.handle(req)
		}
	}
}

func (s *Sink) drainNonBlocking() {
	for {
		select {
		case req, ok := <-s.ch:
			if !ok {
				return
			}
			s.handle(req)
		default:
			return
		}
	}
}

func (s *Sink) handle(req request) {
	switch req.op {
	case opWrite:
		req.reply <- s.backend.Write(req.kline)
	case opFlush:
		req.reply <- s.backend.Flush()
	}
}
