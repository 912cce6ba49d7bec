// Package batch implements the micro-batching dispatcher used by the AI
// assist service. Requests arriving within a short debounce window are
// coalesced into one dispatch wave and executed concurrently against the
// remote proxy endpoint, with each caller's result settled independently of
// its siblings.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBatcherClosed is returned for items still queued when the batcher shuts
// down, and for any Add after shutdown.
var ErrBatcherClosed = errors.New("batcher closed")

// DispatchFunc executes one remote call for one queued item.
type DispatchFunc func(ctx context.Context, action string, payload any) ([]byte, error)

// Config configures a Batcher.
type Config struct {
	Window       time.Duration // Debounce window before a wave fires (default: 100ms)
	MaxBatchSize int           // Maximum items per dispatch wave (default: 5)
}

// DefaultConfig returns the default batcher configuration.
func DefaultConfig() Config {
	return Config{
		Window:       100 * time.Millisecond,
		MaxBatchSize: 5,
	}
}

// Item is one queued request awaiting dispatch.
type Item struct {
	Action  string
	Payload any

	// result carries the item's single settlement. Buffered so a dispatch
	// goroutine never blocks on a caller that abandoned the wait.
	result chan outcome
}

type outcome struct {
	data []byte
	err  error
}

// Batcher coalesces near-simultaneous requests into dispatch waves.
//
// State machine: idle (queue empty, no timer) -> collecting (first Add arms
// the debounce timer) -> dispatching (timer fired; up to MaxBatchSize of the
// oldest items execute concurrently) -> collecting again if items remain,
// else idle. The timer handle is an explicit field checked before arming so
// that two pending waves can never be scheduled at once.
type Batcher struct {
	dispatch DispatchFunc

	window       time.Duration
	maxBatchSize int

	mu     sync.Mutex
	queue  []*Item
	timer  *time.Timer // nil when no wave is scheduled
	closed bool

	wg sync.WaitGroup
}

// NewBatcher creates a batcher dispatching through the given func.
func NewBatcher(cfg Config, dispatch DispatchFunc) *Batcher {
	if cfg.Window <= 0 {
		cfg.Window = 100 * time.Millisecond
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 5
	}

	return &Batcher{
		dispatch:     dispatch,
		window:       cfg.Window,
		maxBatchSize: cfg.MaxBatchSize,
	}
}

// Add enqueues a request and blocks until its result settles. Each item
// settles independently: a failing sibling in the same wave never affects
// this item's outcome. The wait honors ctx, but a dispatched remote call is
// cancellation-free; abandoning the wait does not abort the call.
func (b *Batcher) Add(ctx context.Context, action string, payload any) ([]byte, error) {
	item := &Item{
		Action:  action,
		Payload: payload,
		result:  make(chan outcome, 1),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBatcherClosed
	}
	b.queue = append(b.queue, item)
	itemsTotal.Inc()

	// Arm the wave timer only when none is pending
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.dispatchWave)
	}
	b.mu.Unlock()

	select {
	case out := <-item.result:
		return out.data, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops any pending wave and rejects all queued items with
// ErrBatcherClosed. In-flight dispatches run to completion before Close
// returns.
func (b *Batcher) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	pending := b.queue
	b.queue = nil
	b.mu.Unlock()

	for _, item := range pending {
		item.result <- outcome{err: ErrBatcherClosed}
	}

	b.wg.Wait()
}

// Pending returns the number of items waiting for a wave.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// dispatchWave drains up to maxBatchSize of the oldest queued items (FIFO,
// so early submissions are never starved) and executes them concurrently.
// Runs on the timer's goroutine.
func (b *Batcher) dispatchWave() {
	b.mu.Lock()
	b.timer = nil
	if b.closed || len(b.queue) == 0 {
		b.mu.Unlock()
		return
	}

	n := len(b.queue)
	if n > b.maxBatchSize {
		n = b.maxBatchSize
	}
	wave := make([]*Item, n)
	copy(wave, b.queue[:n])
	b.queue = b.queue[n:]
	b.mu.Unlock()

	wavesTotal.Inc()
	waveSize.Observe(float64(len(wave)))

	// Concurrent dispatch with isolated failure domains: every item settles
	// on its own, never fail-fast across the wave. The remote call gets a
	// background context because nothing may cancel it once dispatched.
	var wg sync.WaitGroup
	for _, item := range wave {
		wg.Add(1)
		b.wg.Add(1)
		go func(item *Item) {
			defer wg.Done()
			defer b.wg.Done()

			data, err := b.dispatch(context.Background(), item.Action, item.Payload)
			if err != nil {
				itemFailures.Inc()
				item.result <- outcome{err: err}
				return
			}
			item.result <- outcome{data: data}
		}(item)
	}
	wg.Wait()

	// Items queued during the wave: collect them into the next one
	b.mu.Lock()
	if !b.closed && len(b.queue) > 0 && b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.dispatchWave)
	}
	b.mu.Unlock()
}
