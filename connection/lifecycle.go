// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/teancom/roonkit/codec"
)

// Connect begins from Disconnected, Failed, or Reconnecting only; any other
// starting state makes this call a no-op. On success the state becomes
// Connected{coreId, coreName}. On any failure the transport and receive
// loop are torn down, all pending requests and subscriptions are resolved,
// and the state becomes Failed.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.CanConnect() {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	c.setState(State{Phase: Connecting})

	tr, err := c.dial.Dial(ctx)
	if err != nil {
		c.setState(State{Phase: Failed, Err: err})
		return err
	}

	c.mu.Lock()
	c.tr = tr
	c.pending = make(map[int64]*pendingCall)
	c.subs = make(map[int64]*subscription)
	c.mu.Unlock()
	c.touchWatchdog()

	recvCtx, recvCancel := context.WithCancel(context.Background())
	recvDone := make(chan struct{})
	c.mu.Lock()
	c.recvCancel = recvCancel
	c.recvDone = recvDone
	c.mu.Unlock()
	go c.receiveLoop(recvCtx, tr)

	c.setState(State{Phase: Registering})
	coreID, coreName, err := c.performRegistration(ctx)
	if err != nil {
		c.teardown()
		c.setState(State{Phase: Failed, Err: err})
		return err
	}

	c.reconnector.Reset()
	c.startWatchdog()
	c.setState(State{Phase: Connected, CoreID: coreID, CoreName: coreName})
	return nil
}

// teardown tears down the current transport and receive loop without
// changing state itself (the caller sets the resulting state).
func (c *Conn) teardown() {
	c.mu.Lock()
	tr := c.tr
	recvCancel := c.recvCancel
	c.tr = nil
	c.mu.Unlock()

	if recvCancel != nil {
		recvCancel()
	}
	if tr != nil {
		tr.Close(1000, "teardown")
	}
	c.stopWatchdog()
	c.failAllPending(&ClosedError{Code: 1000, Reason: "connection torn down"})
	c.finishAllSubs()
}

// Disconnect cancels any reconnect cycle, closes the transport, fails all
// pending requests with ConnectionClosed, finishes all subscriptions,
// resets the request id counter, and transitions to Disconnected.
func (c *Conn) Disconnect() error {
	c.disconnecting.Store(true)
	defer c.disconnecting.Store(false)

	c.cancelReconnect()
	c.teardown()
	c.idCounter.Store(0)
	c.setState(State{Phase: Disconnected})
	return nil
}

// performRegistration runs the two-step handshake from spec §4.4.3: an info
// request to learn the core id, followed by a register request carrying any
// remembered token for that core. While register is outstanding, two pings
// observed without a response transitions the state to AwaitingAuthorization
// without failing the call (the Core may be blocked on user approval in its
// UI); the exact ping count is an implementation choice — the spec only
// requires that the transition eventually happens without cancelling the
// pending register call.
func (c *Conn) performRegistration(ctx context.Context) (coreID, coreName string, err error) {
	infoFrame, err := c.call(ctx, serviceRegistry+"/info", nil, c.opts.RequestTimeout)
	if err != nil {
		return "", "", err
	}
	if infoFrame.Kind != codec.FrameResponse || !codec.IsSuccessName(infoFrame.Name) {
		return "", "", &RegistrationError{Message: "info request failed: " + infoFrame.Name}
	}
	coreID, _ = infoFrame.Body["core_id"].(string)
	if coreID == "" {
		return "", "", &RegistrationError{Message: "info response missing core_id"}
	}

	token, _, _ := c.opts.TokenStore.Token(ctx, coreID)
	reg := c.opts.Registration
	reg.Token = token

	respFrame, err := c.register(ctx, reg)
	if err != nil {
		return "", "", err
	}
	if respFrame.Kind != codec.FrameResponse || respFrame.Name != codec.NameRegistered {
		return "", "", &RegistrationError{Message: "unexpected response: " + respFrame.Name}
	}

	gotCoreID, _ := respFrame.Body["core_id"].(string)
	if gotCoreID == "" {
		return "", "", &RegistrationError{Message: "register response missing core_id"}
	}
	displayName, _ := respFrame.Body["display_name"].(string)
	if newToken, _ := respFrame.Body["token"].(string); newToken != "" {
		if err := c.opts.TokenStore.SaveToken(ctx, gotCoreID, newToken); err != nil {
			c.opts.Logger.Warn("roonkit: failed to persist registration token", "err", err)
		}
	}
	return gotCoreID, displayName, nil
}

func (c *Conn) register(ctx context.Context, reg Registration) (*codec.Frame, error) {
	counter := new(atomic.Int32)
	c.mu.Lock()
	c.awaitingAuthCounter = counter
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.awaitingAuthCounter = nil
		c.mu.Unlock()
	}()

	resultCh := make(chan callResult, 1)
	go func() {
		frame, err := c.call(ctx, serviceRegistry+"/register", reg, c.opts.RegistrationTimeout)
		resultCh <- callResult{frame: frame, err: err}
	}()

	const pingsBeforeAwaitingAuth = 2
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	transitioned := false
	for {
		select {
		case res := <-resultCh:
			return res.frame, res.err
		case <-ticker.C:
			if !transitioned && counter.Load() >= pingsBeforeAwaitingAuth {
				transitioned = true
				c.setState(State{Phase: AwaitingAuthorization})
			}
		}
	}
}
