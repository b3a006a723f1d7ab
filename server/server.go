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

// Package server assembles a reactor pool, a Listener per bound address and a
// Channel-addressed Linkage table into the single entry point spec.md §4.6
// describes: Initialize once, Listen/Connect any number of times, then
// Send/Disconnect/Forget by Channel from any goroutine.
package server

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	libcrt "github.com/sabouaram/flinter/certificates"
	liberr "github.com/sabouaram/flinter/errors"
	"github.com/sabouaram/flinter/ioutils/fileDescriptor"
	"github.com/sabouaram/flinter/ioutils/mapCloser"
	"github.com/sabouaram/flinter/linkage"
	liblog "github.com/sabouaram/flinter/logger"
	"github.com/sabouaram/flinter/listener"
	"github.com/sabouaram/flinter/metrics"
	"github.com/sabouaram/flinter/server/config"
	"github.com/sabouaram/flinter/transport"
)

// Server is the Go shape of the original's Server/LinkageWorker pool (spec.md
// §4.6): a fixed set of reactorThreads, an optional worker pool shared by all
// of them, and the Channel-keyed routing that lets Send/Disconnect/Forget
// reach the right slot without a global lock.
type Server struct {
	log   liblog.Logger
	tuner Tuner

	opts    config.OptionsServer
	threads []*reactorThread
	pool    *workerPool
	closer  mapCloser.Closer

	incoming    atomic.Int64
	maxIncoming int64

	rr          atomic.Uint64
	initialized atomic.Bool

	metrics *metrics.Registry
}

// New builds a Server that logs through log. Call Initialize before Listen or
// Connect.
func New(log liblog.Logger) *Server {
	return &Server{log: log}
}

// SetMetrics wires a metrics.Registry into every connection this Server
// accepts or dials from this point on (live-linkage gauge and frame-size
// histogram). Call it before Listen/Connect; nil (the default) disables
// instrumentation entirely.
func (s *Server) SetMetrics(r *metrics.Registry) {
	s.metrics = r
}

// SampleWorkerQueueDepths publishes the current depth of every worker-pool
// lane to the wired metrics.Registry. It takes an instantaneous snapshot and
// does no locking of its own beyond each channel's len(); callers sample it
// on whatever interval suits them (a reactor timer, a Tuner hook, ...).
func (s *Server) SampleWorkerQueueDepths() {
	if s.metrics == nil || s.pool == nil {
		return
	}
	for i, lane := range s.pool.lanes {
		s.metrics.SetWorkerQueueDepth(i, len(lane))
	}
}

// Initialize starts opts.Slots reactor threads (and opts.Workers worker-pool
// goroutines, if any) and readies the Server for Listen/Connect. Calling it
// twice returns ErrorAlreadyInitialized.
func (s *Server) Initialize(ctx context.Context, opts config.OptionsServer, tuner Tuner) liberr.Error {
	if !s.initialized.CompareAndSwap(false, true) {
		return ErrorAlreadyInitialized.Error(nil)
	}
	if opts.MinimumFileDescriptors > 0 {
		if _, _, err := fileDescriptor.SystemFileDescriptor(opts.MinimumFileDescriptors); err != nil {
			s.initialized.Store(false)
			return ErrorFileDescriptorLimit.Error(err)
		}
	}
	if opts.Slots <= 0 {
		s.initialized.Store(false)
		return ErrorNoSlots.Error(nil)
	}

	if tuner == nil {
		tuner = &EasyTuner{}
	}
	s.tuner = tuner
	s.opts = opts
	s.maxIncoming = opts.MaximumIncomingConnections
	s.closer = mapCloser.New(ctx)

	s.threads = make([]*reactorThread, opts.Slots)
	for i := 0; i < opts.Slots; i++ {
		t := newReactorThread(i, opts.Slots, s.log)
		if e := t.start(ctx, tuner); e != nil {
			for j := 0; j < i; j++ {
				s.threads[j].stop(tuner)
			}
			s.initialized.Store(false)
			return e
		}
		s.threads[i] = t
	}

	if opts.Workers > 0 {
		s.pool = newWorkerPool(opts.Workers)
		s.pool.start()
	}

	return nil
}

// Shutdown stops every reactor thread (disconnecting every live Linkage first)
// and the worker pool, then closes every resource registered with the
// Server's mapCloser.Closer. Idempotent: a second call is a no-op, following
// the mapCloser contract.
func (s *Server) Shutdown() error {
	if !s.initialized.CompareAndSwap(true, false) {
		return nil
	}
	for _, t := range s.threads {
		t.stop(s.tuner)
	}
	if s.pool != nil {
		s.pool.stop()
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Server) pickSlot(hint int) (*reactorThread, liberr.Error) {
	if len(s.threads) == 0 {
		return nil, ErrorNotInitialized.Error(nil)
	}
	if hint >= 0 {
		if hint >= len(s.threads) {
			return nil, ErrorChannelWrongSlot.Error(fmt.Errorf("thread id %d out of range (%d slots)", hint, len(s.threads)))
		}
		return s.threads[hint], nil
	}
	n := s.rr.Add(1) - 1
	return s.threads[int(n%uint64(len(s.threads)))], nil
}

func (s *Server) threadFor(ch Channel) (*reactorThread, liberr.Error) {
	if len(s.threads) == 0 {
		return nil, ErrorNotInitialized.Error(nil)
	}
	return s.threads[ch.Slot(len(s.threads))], nil
}

// wrapHandler composes the metrics, worker-pool and bookkeeping decorators
// around a caller's raw Handler, innermost first: raw -> (optional)
// metricsHandler -> (optional) workerHandler -> bookkeepingHandler. bookkeepingHandler is
// outermost so OnDisconnected always fires the Server-level cleanup exactly
// once regardless of whether a worker pool is in play.
func (s *Server) wrapHandler(raw linkage.Handler, t *reactorThread, ch Channel, incoming bool) linkage.Handler {
	h := raw
	if s.metrics != nil {
		h = &metricsHandler{Handler: h, reg: s.metrics}
	}
	if s.pool != nil {
		h = &workerHandler{Handler: h, pool: s.pool, thread: t}
	}
	if s.metrics != nil {
		s.metrics.IncLiveLinkages(t.slot)
	}
	return &bookkeepingHandler{Handler: h, srv: s, thread: t, ch: ch, incoming: incoming}
}

// metricsHandler observes every complete frame's size into the wired
// metrics.Registry's histogram before delegating. It wraps the caller's raw
// Handler directly, so the size recorded is always the frame exactly as
// GetMessageLength framed it, whether OnMessage then runs inline on the
// reactor goroutine or — once workerHandler wraps it in turn — on a worker.
type metricsHandler struct {
	linkage.Handler
	reg *metrics.Registry
}

func (m *metricsHandler) OnMessage(l *linkage.Linkage, frame []byte) int {
	m.reg.ObserveFrameSize(len(frame))
	return m.Handler.OnMessage(l, frame)
}

// Listen binds opts.Address on one reactor slot (opts.ThreadID, or round-robin
// when negative) and hands every accepted connection to a Linkage built from
// newHandler(), registered under a freshly allocated incoming Channel.
func (s *Server) Listen(opts config.OptionsListener, newHandler func() linkage.Handler) (net.Addr, liberr.Error) {
	t, e := s.pickSlot(opts.ThreadID)
	if e != nil {
		return nil, e
	}

	var tlsCfg libcrt.TLSConfig
	if opts.TLS != nil {
		if ve := opts.TLS.Validate(); ve != nil {
			return nil, ve
		}
		tlsCfg = opts.TLS.New()
	}

	lopts := listener.Options{
		Network:     opts.Network,
		Address:     opts.Address,
		ReuseAddr:   opts.ReuseAddr,
		KeepAlive:   opts.KeepAlive.Time(),
		NoDelay:     opts.NoDelay,
		DeferAccept: opts.DeferAccept,
		TLS:         tlsCfg,
	}

	create := func(conn net.Conn, peer, local string) *linkage.Linkage {
		if n := s.incoming.Add(1); s.maxIncoming > 0 && n > s.maxIncoming {
			s.incoming.Add(-1)
			_ = conn.Close()
			return nil
		}

		var io transport.AbstractIo
		if tlsCfg != nil {
			io = transport.NewTLSAccepted(conn, tlsCfg)
		} else {
			io = transport.NewPlainAccepted(conn)
		}

		ch := t.alloc.allocate(false)
		raw := newHandler()
		lk := linkage.New(io, s.wrapHandler(raw, t, ch, true), peer, local)
		lk.SetTimeouts(s.opts.ReceiveTimeout, s.opts.ConnectTimeout, s.opts.SendTimeout, s.opts.IdleTimeout)
		t.register(ch, lk)
		s.closer.Add(lk)
		return lk
	}

	ln := listener.New(lopts, t.r, create, s.log, true)
	if e := ln.Start(context.Background()); e != nil {
		return nil, e
	}
	s.closer.Add(ln)
	return ln.Addr(), nil
}

// Connect records an outgoing route and allocates its Channel; the socket
// itself is not dialed until the first Send (spec.md §4.6 "Connect path":
// "Connect... does not itself open a socket").
func (s *Server) Connect(opts config.OptionsConnect, newHandler func() linkage.Handler) (Channel, liberr.Error) {
	t, e := s.pickSlot(opts.ThreadID)
	if e != nil {
		return InvalidChannel, e
	}

	var tlsCfg libcrt.TLSConfig
	if opts.TLS != nil {
		if ve := opts.TLS.Validate(); ve != nil {
			return InvalidChannel, ve
		}
		tlsCfg = opts.TLS.New()
	}

	ch := t.alloc.allocate(true)
	t.setRoute(ch, &outgoingInfo{
		address:     opts.Address,
		makeHandler: newHandler,
		tls:         tlsCfg,
		serverName:  opts.ServerName,
	})
	return ch, nil
}

// Send delivers buf over ch, materializing an outgoing connection on first
// use. It is safe to call from any goroutine, including the owning reactor's
// own (spec.md §8 "cross-thread send equivalence": Send from the owning
// reactor's own goroutine and Send from any other goroutine observe the same
// ordering) — a Handler forwarding a message from inside OnMessage calls Send
// exactly like any other caller. It does not wait for delivery: the very first
// Send on a not-yet-materialized outgoing channel posts the whole
// connect-and-send sequence to the owning reactor and returns true
// optimistically, the same way Linkage.Send itself only promises "queued", not
// "delivered". A concurrent Send on the same channel waits on the route's
// mutex until that posted sequence has run (see sendViaReconnect).
func (s *Server) Send(ch Channel, buf []byte) bool {
	t, e := s.threadFor(ch)
	if e != nil {
		return false
	}

	if lk, ok := t.linkage(ch); ok {
		return lk.Send(buf)
	}

	if !ch.IsOutgoing() {
		return false
	}
	info, ok := t.route(ch)
	if !ok {
		return false
	}

	return s.sendViaReconnect(t, ch, info, buf)
}

// sendViaReconnect materializes ch's outgoing connection if necessary and
// queues buf on it, with the construct-attach-register sequence always
// running inside a single closure posted to the owning reactor rather than on
// whatever goroutine called Send. Posting (instead of attaching inline, or
// blocking the caller until the post completes) avoids two hazards at once:
// a caller on some other goroutine racing Linkage.Attach's unsynchronized
// state/pending/connectJam writes against the reactor's own onTick — exactly
// the race listener.go's accept path avoids by posting its own Attach call —
// and a caller already running on the reactor's own goroutine deadlocking on
// a result only that same goroutine could ever produce.
//
// info.mtx is taken here and released inside the posted closure, so a second
// concurrent Send for the same not-yet-materialized channel blocks on the
// mutex until the first Send's posted closure has run, rather than posting a
// second, redundant connect.
func (s *Server) sendViaReconnect(t *reactorThread, ch Channel, info *outgoingInfo, buf []byte) bool {
	info.mtx.Lock()

	if lk, ok := t.linkage(ch); ok {
		info.mtx.Unlock()
		return lk.Send(buf)
	}

	t.r.Post(func() {
		defer info.mtx.Unlock()

		if lk, ok := t.linkage(ch); ok {
			lk.Send(buf)
			return
		}

		var io transport.AbstractIo
		if info.tls != nil {
			io = transport.NewTLSOutgoing(info.tls, info.serverName)
		} else {
			io = transport.NewPlainOutgoing()
		}

		raw := info.makeHandler()
		lk := linkage.New(io, s.wrapHandler(raw, t, ch, false), info.address, "")
		lk.SetTimeouts(s.opts.ReceiveTimeout, s.opts.ConnectTimeout, s.opts.SendTimeout, s.opts.IdleTimeout)

		if e := lk.Attach(t.r); e != nil {
			if s.log != nil {
				s.log.Error("server: outgoing attach failed", e)
			}
			return
		}

		t.register(ch, lk)
		s.closer.Add(lk)
		lk.Send(buf)
	})

	return true
}

// Disconnect tears down ch's Linkage, if any is currently materialized.
// finishWrite mirrors linkage.Linkage.Disconnect.
func (s *Server) Disconnect(ch Channel, finishWrite bool) liberr.Error {
	t, e := s.threadFor(ch)
	if e != nil {
		return e
	}
	lk, ok := t.linkage(ch)
	if !ok {
		return ErrorUnknownChannel.Error(nil)
	}
	lk.Disconnect(finishWrite)
	return nil
}

// Forget removes ch's outgoing route so a future Send never reconnects it. If
// the channel is currently connected, the route is cleared once that Linkage
// disconnects instead of immediately (bookkeepingHandler.OnDisconnected checks
// forgetPending).
func (s *Server) Forget(ch Channel) liberr.Error {
	if !ch.IsOutgoing() {
		return ErrorUnknownChannel.Error(nil)
	}
	t, e := s.threadFor(ch)
	if e != nil {
		return e
	}
	info, ok := t.route(ch)
	if !ok {
		return ErrorUnknownChannel.Error(nil)
	}

	if _, live := t.linkage(ch); live {
		info.mtx.Lock()
		info.forgetPending = true
		info.mtx.Unlock()
		return nil
	}

	t.clearRoute(ch)
	return nil
}

// Incoming reports the current number of live incoming connections, across
// every slot.
func (s *Server) Incoming() int64 {
	return s.incoming.Load()
}
