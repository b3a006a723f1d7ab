/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package linkage

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	libdur "github.com/sabouaram/flinter/duration"
	liberr "github.com/sabouaram/flinter/errors"
	"github.com/sabouaram/flinter/reactor"
	"github.com/sabouaram/flinter/transport"
)

const (
	// maxWriteBound is the ceiling on buffered-but-unwritten bytes before Send refuses.
	maxWriteBound = 64 * 1024 * 1024
	// maxFrameBound caps a single declared frame length; a handler that reports more
	// is treated the same as an invalid frame.
	maxFrameBound = 64 * 1024 * 1024
	// readChunkSize is how much is read off the transport per Read call.
	readChunkSize = 65536
	// cleanupPeriod is how often Handler.Cleanup is invoked, mirroring the reactor's
	// once-a-second health check.
	cleanupPeriod = time.Second
)

// Default jamming timeouts, applied by New unless overridden via SetTimeouts.
const (
	DefaultReceiveTimeout = libdur.Duration(15 * time.Second)
	DefaultConnectTimeout = libdur.Duration(15 * time.Second)
	DefaultSendTimeout    = libdur.Duration(15 * time.Second)
	DefaultIdleTimeout    = libdur.Duration(300 * time.Second)
)

// Linkage is a per-connection state machine driven entirely from its owning
// reactor's goroutine: Attach registers a per-tick poll function, and every other
// field is mutated only from inside that poll or a command the reactor posted.
// Send and Disconnect are the only methods safe to call from a foreign goroutine;
// both hand off to the reactor's command queue rather than touching state
// directly, and bracket the handoff with a held-count so a concurrent detach
// cannot observe a half-finished cross-thread operation.
type Linkage struct {
	io      transport.AbstractIo
	handler Handler
	reactor *reactor.Reactor
	pollTok uint64

	peer  string
	local string

	state   State
	pending PendingAction

	rraw    bytes.Buffer
	rlength int

	wbuf    [][]byte
	wbufLen atomic.Int64

	graceful atomic.Bool
	closed   bool

	held atomic.Int32

	lastReceived time.Time
	lastSent     time.Time
	connectJam   time.Time
	sendJam      time.Time
	receiveJam   time.Time
	lastCleanup  time.Time

	receiveTimeout time.Duration
	connectTimeout time.Duration
	sendTimeout    time.Duration
	idleTimeout    time.Duration

	mtx sync.Mutex
}

// New builds a Linkage over io, driven by handler, with the default jamming
// timeouts. peer/local are informational (used in log messages and tests).
func New(io transport.AbstractIo, handler Handler, peer, local string) *Linkage {
	return &Linkage{
		io:             io,
		handler:        handler,
		peer:           peer,
		local:          local,
		state:          StateNew,
		receiveTimeout: DefaultReceiveTimeout.Time(),
		connectTimeout: DefaultConnectTimeout.Time(),
		sendTimeout:    DefaultSendTimeout.Time(),
		idleTimeout:    DefaultIdleTimeout.Time(),
	}
}

// SetTimeouts overrides the four jamming timeouts. Only meaningful before Attach.
func (l *Linkage) SetTimeouts(receive, connect, send, idle libdur.Duration) {
	l.receiveTimeout = receive.Time()
	l.connectTimeout = connect.Time()
	l.sendTimeout = send.Time()
	l.idleTimeout = idle.Time()
}

// Peer returns the remote address this Linkage was built for.
func (l *Linkage) Peer() string { return l.peer }

// Local returns the local address this Linkage was built for.
func (l *Linkage) Local() string { return l.local }

// State reports the current FSM state.
func (l *Linkage) State() State { return l.state }

// Pending reports the transport step, if any, the last Read/Write attempt
// suspended on.
func (l *Linkage) Pending() PendingAction { return l.pending }

// Held reports how many cross-thread operations currently hold a reference to
// this Linkage (i.e. have posted but not yet run a command against it).
func (l *Linkage) Held() int32 { return l.held.Load() }

func (l *Linkage) hold()    { l.held.Add(1) }
func (l *Linkage) release() { l.held.Add(-1) }

// Attach binds the Linkage to r and begins driving it: r.Attach registers a
// per-tick poll standing in for fd readiness, and an outgoing transport that
// still needs to dial does so on a dedicated goroutine so the reactor's own
// goroutine never blocks on a connect.
func (l *Linkage) Attach(r *reactor.Reactor) liberr.Error {
	l.mtx.Lock()
	if l.reactor != nil {
		l.mtx.Unlock()
		return ErrorAlreadyAttached.Error(nil)
	}
	l.reactor = r
	l.mtx.Unlock()

	immediate, _, _, err := l.io.Initialize()
	if err != nil {
		return err
	}

	l.pollTok = r.Attach(l.onTick)

	if immediate == transport.ActionConnect {
		l.state = StateConnecting
		l.pending = PendingConnect
		l.connectJam = time.Now()
		l.hold()
		go func() {
			defer l.release()
			cerr := l.io.Connect(context.Background(), l.peer)
			r.Post(func() { l.onConnectComplete(cerr) })
		}()
		return nil
	}

	l.onEstablished()
	return nil
}

// Detach unregisters the Linkage from its reactor and tears it down. Safe to
// call from any goroutine: the actual work runs on the reactor's own goroutine.
func (l *Linkage) Detach() {
	r := l.reactor
	if r == nil {
		return
	}
	l.hold()
	r.Post(func() {
		defer l.release()
		l.teardown()
	})
}

func (l *Linkage) onConnectComplete(cerr liberr.Error) {
	if cerr != nil {
		l.handler.OnError(l, false, cerr)
		l.teardown()
		return
	}
	l.onEstablished()
}

func (l *Linkage) onEstablished() {
	l.state = StateConnected
	l.pending = PendingNone
	l.connectJam = time.Time{}
	now := time.Now()
	l.lastReceived = now
	l.lastSent = now
	l.lastCleanup = now
	if !l.handler.OnConnected(l) {
		l.teardown()
	}
}

// Send appends buf to the write queue (copying it first) or, if nothing is
// pending, writes through immediately. It never blocks. It returns false if the
// Linkage is draining, the frame is too large, or the write bound is exceeded.
func (l *Linkage) Send(buf []byte) bool {
	if len(buf) > maxWriteBound {
		return false
	}
	if l.graceful.Load() {
		return false
	}
	if l.wbufLen.Load()+int64(len(buf)) > maxWriteBound {
		return false
	}
	if l.reactor == nil {
		return false
	}

	cp := make([]byte, len(buf))
	copy(cp, buf)

	l.hold()
	l.reactor.Post(func() {
		defer l.release()
		l.doSend(cp)
	})
	return true
}

func (l *Linkage) doSend(buf []byte) {
	if l.closed || l.graceful.Load() {
		return
	}
	if l.wbufLen.Load()+int64(len(buf)) > maxWriteBound {
		l.handler.OnError(l, false, ErrorWriteBoundExceeded.Error(nil))
		l.teardown()
		return
	}
	l.wbuf = append(l.wbuf, buf)
	l.wbufLen.Add(int64(len(buf)))
	l.pumpWrite()
}

// Close satisfies io.Closer with a non-graceful Disconnect, so a Linkage can be
// registered directly with an ioutils/mapCloser.Closer.
func (l *Linkage) Close() error {
	l.Disconnect(false)
	return nil
}

// Disconnect sets the graceful flag. If finishWrite is true the queued writes
// still drain before shutdown; otherwise they are dropped immediately. Safe to
// call from any goroutine.
func (l *Linkage) Disconnect(finishWrite bool) {
	l.graceful.Store(true)
	if l.reactor == nil {
		return
	}
	l.hold()
	l.reactor.Post(func() {
		defer l.release()
		l.doDisconnect(finishWrite)
	})
}

func (l *Linkage) doDisconnect(finishWrite bool) {
	if l.closed {
		return
	}
	if !finishWrite {
		l.wbuf = nil
		l.wbufLen.Store(0)
	}
	if len(l.wbuf) == 0 {
		l.teardown()
		return
	}
	l.state = StateGracefulDrain
}

// onTick runs once per millisecond on the reactor's own goroutine: it pumps the
// read and write paths, checks the four jamming timers, and once a second
// invokes the handler's Cleanup hook. Which pump runs first is decided by
// pending: a side jammed wanting the opposite direction (TLS renegotiation
// mid read/write) gets first shot at clearing it this tick.
func (l *Linkage) onTick() {
	if l.closed {
		return
	}
	if l.graceful.Load() && l.state == StateConnected {
		l.state = StateGracefulDrain
	}
	if l.state != StateConnecting {
		writeFirst := l.pending == PendingWrite
		if writeFirst {
			l.runWrite()
		} else {
			l.runRead()
		}
		if l.closed {
			return
		}
		if writeFirst {
			l.runRead()
		} else {
			l.runWrite()
		}
		if l.closed {
			return
		}
	}
	l.checkTimers()
	if l.closed {
		return
	}
	if time.Since(l.lastCleanup) >= cleanupPeriod {
		l.lastCleanup = time.Now()
		if !l.handler.Cleanup(l, time.Now().UnixNano()) {
			l.teardown()
		}
	}
}

func (l *Linkage) runRead() {
	if l.state == StateConnected {
		l.state = StateReading
	}
	l.pumpRead()
	if l.state == StateReading {
		l.state = StateConnected
	}
}

func (l *Linkage) runWrite() {
	if l.state == StateConnected {
		l.state = StateWriting
	}
	l.pumpWrite()
	if l.state == StateWriting {
		l.state = StateConnected
	}
}

func (l *Linkage) pumpRead() {
	scratch := make([]byte, readChunkSize)
	for i := 0; i < 16; i++ {
		n, st := l.io.Read(scratch)
		switch st {
		case transport.StatusOK:
			l.lastReceived = time.Now()
			l.receiveJam = time.Time{}
			l.pending = PendingNone
			l.rraw.Write(scratch[:n])
			if !l.drainFrames() {
				return
			}
			if n < len(scratch) {
				return
			}
		case transport.StatusJammed:
			if l.receiveJam.IsZero() {
				l.receiveJam = time.Now()
			}
			return
		case transport.StatusWannaRead, transport.StatusWannaWrite:
			if l.receiveJam.IsZero() {
				l.receiveJam = time.Now()
			}
			if st == transport.StatusWannaWrite {
				l.pending = PendingWrite
			} else {
				l.pending = PendingRead
			}
			return
		case transport.StatusClosed:
			l.teardown()
			return
		case transport.StatusBug:
			return
		default:
			l.handler.OnError(l, true, fmt.Errorf("transport read status %v", st))
			l.teardown()
			return
		}
	}
}

// drainFrames consumes complete frames out of rraw. It returns false if the
// Linkage was torn down while draining.
func (l *Linkage) drainFrames() bool {
	for {
		if l.rlength == 0 {
			n := l.handler.GetMessageLength(l.rraw.Bytes())
			if n < 0 {
				l.handler.OnError(l, true, ErrorInvalidFrame.Error(nil))
				l.teardown()
				return false
			}
			if n == 0 {
				return true
			}
			if n > maxFrameBound {
				l.handler.OnError(l, true, ErrorInvalidFrame.Error(nil))
				l.teardown()
				return false
			}
			l.rlength = n
		}
		if l.rraw.Len() < l.rlength {
			return true
		}

		frame := make([]byte, l.rlength)
		copy(frame, l.rraw.Bytes()[:l.rlength])
		l.rraw.Next(l.rlength)
		l.rlength = 0

		switch ret := l.handler.OnMessage(l, frame); {
		case ret < 0:
			l.teardown()
			return false
		case ret == 0:
			l.graceful.Store(true)
			return true
		}
	}
}

func (l *Linkage) pumpWrite() {
	for {
		if len(l.wbuf) == 0 {
			if l.graceful.Load() && l.state != StateClosed {
				l.teardown()
			}
			return
		}

		chunk := l.wbuf[0]
		n, st := l.io.Write(chunk)
		switch st {
		case transport.StatusOK:
			l.lastSent = time.Now()
			l.sendJam = time.Time{}
			l.pending = PendingNone
			l.wbufLen.Add(-int64(n))
			if n >= len(chunk) {
				l.wbuf = l.wbuf[1:]
				continue
			}
			l.wbuf[0] = chunk[n:]
			if l.sendJam.IsZero() {
				l.sendJam = time.Now()
			}
			return
		case transport.StatusJammed:
			if n > 0 {
				l.wbufLen.Add(-int64(n))
				l.wbuf[0] = chunk[n:]
			}
			if l.sendJam.IsZero() {
				l.sendJam = time.Now()
			}
			return
		case transport.StatusWannaRead, transport.StatusWannaWrite:
			if l.sendJam.IsZero() {
				l.sendJam = time.Now()
			}
			if st == transport.StatusWannaRead {
				l.pending = PendingRead
			} else {
				l.pending = PendingWrite
			}
			return
		case transport.StatusClosed:
			l.handler.OnError(l, false, fmt.Errorf("peer closed during write"))
			l.teardown()
			return
		default:
			l.handler.OnError(l, false, fmt.Errorf("transport write status %v", st))
			l.teardown()
			return
		}
	}
}

func (l *Linkage) checkTimers() {
	now := time.Now()
	if !l.connectJam.IsZero() && now.Sub(l.connectJam) >= l.connectTimeout {
		l.teardown()
		return
	}
	if !l.sendJam.IsZero() && now.Sub(l.sendJam) >= l.sendTimeout {
		l.teardown()
		return
	}
	if !l.receiveJam.IsZero() && now.Sub(l.receiveJam) >= l.receiveTimeout {
		l.teardown()
		return
	}
	oldest := l.lastSent
	if l.lastReceived.Before(oldest) {
		oldest = l.lastReceived
	}
	if !oldest.IsZero() && now.Sub(oldest) >= l.idleTimeout {
		l.teardown()
	}
}

// teardown is idempotent and only ever runs on the reactor's own goroutine: it
// shuts down the transport, unregisters the per-tick poll, flips to
// SHUTTING_DOWN then CLOSED, and fires OnDisconnected exactly once.
func (l *Linkage) teardown() {
	if l.closed {
		return
	}
	l.closed = true
	l.state = StateShuttingDown
	l.pending = PendingShutdown
	_ = l.io.Shutdown()
	if l.reactor != nil {
		l.reactor.Detach(l.pollTok)
	}
	l.handler.OnDisconnected(l)
	l.state = StateClosed
	l.pending = PendingNone
}
