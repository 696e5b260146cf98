// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package connection implements the core of roonkit: the request/response
// correlation layer, the registration/authorization state machine, the
// keepalive watchdog, the reconnector, and subscription fan-out described in
// spec §4.4. All mutable state (pending requests, subscriptions, the
// current ConnectionState, the id counter) is guarded by a single mutex,
// which is this package's idiomatic-Go rendition of the single serialized
// actor the design calls for: the receive loop, per-request timeouts, the
// watchdog, and the reconnect loop are independent goroutines that each
// take the lock to mutate state, exactly as the design's "timer tasks
// re-enter the actor" language describes.
package connection

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teancom/roonkit/codec"
	"github.com/teancom/roonkit/reconnect"
	"github.com/teancom/roonkit/transport"
)

// Dialer establishes a fresh Transport. transport.WebSocketDialer satisfies
// this directly; tests supply one that hands back a *transport.Fake.
type Dialer interface {
	Dial(ctx context.Context) (transport.Transport, error)
}

type pendingCall struct {
	resultCh chan callResult
}

type callResult struct {
	frame *codec.Frame
	err   error
}

type subscription struct {
	ch        chan *codec.Frame
	closeOnce sync.Once
}

// Conn is the connection engine: one logical session with a Roon Core.
type Conn struct {
	opts Options
	dial Dialer

	mu          sync.Mutex
	state       State
	tr          transport.Transport
	pending     map[int64]*pendingCall
	subs        map[int64]*subscription
	stateCh     chan State
	recvCancel  context.CancelFunc
	recvDone    chan struct{}
	watchdogCancel context.CancelFunc
	watchdogDone   chan struct{}
	reconnectCancel context.CancelFunc
	awaitingAuthCounter *atomic.Int32

	idCounter   atomic.Int64
	lastFrameAt atomic.Int64 // unix nanoseconds
	disconnecting atomic.Bool

	reconnector *reconnect.Reconnector
}

// New constructs a Conn that dials via dialer. Call Connect to establish
// the session.
func New(dialer Dialer, opts Options) *Conn {
	opts = opts.withDefaults()
	return &Conn{
		opts:        opts,
		dial:        dialer,
		pending:     make(map[int64]*pendingCall),
		subs:        make(map[int64]*subscription),
		state:       State{Phase: Disconnected},
		reconnector: reconnect.New(opts.Reconnect),
	}
}

// State returns the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats is a point-in-time snapshot of engine internals, for host
// observability. roonkit does not wire a metrics library (see DESIGN.md);
// this is a plain struct snapshot in the teacher's schemaCache style.
type Stats struct {
	PendingRequests    int
	ActiveSubscriptions int
	ReconnectAttempts  int
	LastFrameAt        time.Time
}

// Stats returns a snapshot of engine internals.
func (c *Conn) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		PendingRequests:     len(c.pending),
		ActiveSubscriptions: len(c.subs),
		ReconnectAttempts:   c.reconnector.Attempt(),
		LastFrameAt:         time.Unix(0, c.lastFrameAt.Load()),
	}
}

func (c *Conn) nextRequestID() int64 {
	return c.idCounter.Add(1) - 1
}

// setState records a new state and, if a state stream is currently active,
// delivers it. Delivery is a blocking send on a buffered channel: there is
// exactly one emitter (this method, itself serialized by mu), so blocking
// here cannot reorder anything — it only applies backpressure to a
// consumer that has fallen behind.
func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	if c.stateCh != nil {
		c.stateCh <- s
	}
	c.mu.Unlock()

	c.opts.Logger.Info("roonkit: state transition", "state", s.String())
}

// StateStream returns a stream of connection states. Calling it again
// finishes the previously returned stream (so its consumer's range loop
// terminates instead of hanging) and the new stream immediately yields the
// current state.
func (c *Conn) StateStream() <-chan State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stateCh != nil {
		close(c.stateCh)
	}
	ch := make(chan State, 32)
	c.stateCh = ch
	ch <- c.state
	return ch
}

// Send issues a correlated request and blocks for its response (or for
// send failure, timeout, or connection teardown). This is the no-drop,
// no-double-resume contract from spec §4.4.5: the completion sink is
// registered in the pending map before the send is even initiated, the send
// itself runs detached, and exactly one of {response, send failure,
// timeout, teardown} resolves the caller via an atomic take-from-map.
func (c *Conn) Send(ctx context.Context, path string, body any) (*codec.Frame, error) {
	return c.call(ctx, path, body, c.opts.RequestTimeout)
}

func (c *Conn) call(ctx context.Context, path string, body any, timeout time.Duration) (*codec.Frame, error) {
	c.mu.Lock()
	tr := c.tr
	if tr == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	id := c.nextRequestID()
	pc := &pendingCall{resultCh: make(chan callResult, 1)}
	c.pending[id] = pc
	c.mu.Unlock()

	data, err := codec.EncodeRequest(id, path, body)
	if err != nil {
		c.claim(id, callResult{err: err})
	} else {
		go func() {
			if sendErr := tr.Send(context.Background(), data); sendErr != nil {
				c.claim(id, callResult{err: sendErr})
			}
		}()
	}

	timer := time.AfterFunc(timeout, func() {
		c.claim(id, callResult{err: fmt.Errorf("%w: %s", ErrTimeout, path)})
	})
	defer timer.Stop()

	select {
	case res := <-pc.resultCh:
		return res.frame, res.err
	case <-ctx.Done():
		// claim may lose the race to a response that arrived in the same
		// instant; reading resultCh again always yields whichever result
		// actually won, since it is buffered and written exactly once.
		c.claim(id, callResult{err: ctx.Err()})
		res := <-pc.resultCh
		return res.frame, res.err
	}
}

// claim atomically removes id from the pending map and, if this call won
// the race to do so, delivers res. Any other concurrent claimer for the
// same id — response arrival, send failure, timeout, or teardown — finds
// the entry already gone and does nothing. This is the single invariant
// that prevents both double-resume panics and dropped responses.
func (c *Conn) claim(id int64, res callResult) {
	c.mu.Lock()
	pc, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if ok {
		pc.resultCh <- res
	}
}

func (c *Conn) failAllPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[int64]*pendingCall)
	c.mu.Unlock()
	for _, pc := range pending {
		pc.resultCh <- callResult{err: err}
	}
}

// Subscribe opens a long-lived request keyed by its request id; CONTINUE
// frames are delivered on the returned channel in wire order, and the
// channel is closed (never leaving the consumer hanging) on COMPLETE, on
// send failure, on receive-loop exit, or when ctx is cancelled. Cancelling
// ctx is this layer's means of unsubscribing; it does not itself send an
// unsubscribe request; the Services layer, which knows the method name,
// does that.
func (c *Conn) Subscribe(ctx context.Context, path string, body any) (<-chan *codec.Frame, error) {
	c.mu.Lock()
	tr := c.tr
	if tr == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	id := c.nextRequestID()
	sub := &subscription{ch: make(chan *codec.Frame, 64)}
	c.subs[id] = sub
	c.mu.Unlock()

	data, err := codec.EncodeRequest(id, path, body)
	if err != nil {
		c.finishSub(id, err)
		return nil, err
	}

	go func() {
		if sendErr := tr.Send(context.Background(), data); sendErr != nil {
			c.finishSub(id, sendErr)
		}
	}()

	go func() {
		<-ctx.Done()
		c.finishSub(id, ctx.Err())
	}()

	return sub.ch, nil
}

func (c *Conn) finishSub(id int64, _ error) {
	c.mu.Lock()
	sub, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
	}
	c.mu.Unlock()
	if ok {
		sub.closeOnce.Do(func() { close(sub.ch) })
	}
}

func (c *Conn) finishAllSubs() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[int64]*subscription)
	c.mu.Unlock()
	for _, sub := range subs {
		sub.closeOnce.Do(func() { close(sub.ch) })
	}
}
