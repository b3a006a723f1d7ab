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

// Package listener wraps a bound, listening socket and turns each accepted
// connection into a linkage.Linkage via a caller-supplied factory, attached to
// the same reactor that received the accept — the Go counterpart of spec.md
// §4.5's LinkageBase specialization.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	libfd "github.com/sabouaram/flinter/ioutils/fileDescriptor"
	libcrt "github.com/sabouaram/flinter/certificates"
	liberr "github.com/sabouaram/flinter/errors"
	"github.com/sabouaram/flinter/linkage"
	liblog "github.com/sabouaram/flinter/logger"
	"github.com/sabouaram/flinter/reactor"
	"github.com/sabouaram/flinter/transport"
)

// CreateLinkage builds a Linkage for a freshly accepted connection; peer/local
// are the accepted socket's remote/local address strings. It is the Go
// counterpart of spec.md §4.5's create_linkage(reactor, peer, me) factory: the
// Server supplies one per Listener, wiring in the right Handler and, when the
// Listener carries TLS options, a TLS-backed AbstractIo instead of a plain one.
type CreateLinkage func(conn net.Conn, peer, local string) *linkage.Linkage

// Listener owns one bound socket and the reactor it hands accepted connections
// to. Accept runs on a dedicated goroutine (net.Listener.Accept blocks, and the
// reactor's own goroutine must never block), and every accepted Linkage is
// attached from inside that same reactor via Reactor.Post.
type Listener struct {
	opts    Options
	create  CreateLinkage
	r       *reactor.Reactor
	log     liblog.Logger
	checkFd bool

	mtx  sync.Mutex
	ln   net.Listener
	done chan struct{}
}

// New builds a Listener bound to r, that will hand every accepted connection to
// create. checkFd, when true, makes Start query the process file descriptor
// limit first and fail fast instead of accepting into ENFILE/EMFILE (spec.md
// §4.5: "ENFILE/EMFILE are fatal, the framework does not attempt heroic
// recovery" — checking the limit up front is the Go-idiomatic way to fail
// before that condition is ever reached on the hot accept path).
func New(opts Options, r *reactor.Reactor, create CreateLinkage, log liblog.Logger, checkFd bool) *Listener {
	return &Listener{opts: opts, r: r, create: create, log: log, checkFd: checkFd}
}

// Start binds and begins accepting. Returns ErrorAlreadyListening if called
// twice, ErrorFileLimitExhausted if checkFd is set and the process is already
// out of descriptors, or ErrorBindFailed if the bind itself fails.
func (l *Listener) Start(ctx context.Context) liberr.Error {
	l.mtx.Lock()
	if l.ln != nil {
		l.mtx.Unlock()
		return ErrorAlreadyListening.Error(nil)
	}

	if l.checkFd {
		cur, max, e := libfd.SystemFileDescriptor(0)
		if e != nil {
			l.mtx.Unlock()
			return ErrorFileLimitExhausted.Error(e)
		}
		if cur <= 0 || max <= 0 {
			l.mtx.Unlock()
			return ErrorFileLimitExhausted.Error(fmt.Errorf("no file descriptors available (current=%d max=%d)", cur, max))
		}
	}

	ln, e := listen(ctx, l.opts)
	if e != nil {
		l.mtx.Unlock()
		return ErrorBindFailed.Error(e)
	}
	l.ln = ln
	l.done = make(chan struct{})
	l.mtx.Unlock()

	go l.acceptLoop(ln, l.done)
	return nil
}

// Stop closes the listening socket, unblocking the accept goroutine.
func (l *Listener) Stop() liberr.Error {
	l.mtx.Lock()
	ln := l.ln
	if ln == nil {
		l.mtx.Unlock()
		return ErrorNotListening.Error(nil)
	}
	l.ln = nil
	l.mtx.Unlock()

	return liberr.CodeError(0).IfError(ln.Close())
}

// Close satisfies io.Closer by calling Stop, so a Listener can be registered
// directly with an ioutils/mapCloser.Closer.
func (l *Listener) Close() error {
	if e := l.Stop(); e != nil {
		return e
	}
	return nil
}

// Addr returns the bound address, or nil before Start.
func (l *Listener) Addr() net.Addr {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

func (l *Listener) acceptLoop(ln net.Listener, done chan struct{}) {
	defer close(done)
	for {
		conn, e := ln.Accept()
		if e != nil {
			if isFatalAcceptError(e) {
				if l.log != nil {
					l.log.Fatal("listener: accept failed fatally", e)
				}
				return
			}
			if errors.Is(e, net.ErrClosed) {
				return
			}
			if l.log != nil {
				l.log.Warning("listener: transient accept error", e)
			}
			continue
		}

		applyAcceptOptions(conn, l.opts)
		peer := conn.RemoteAddr().String()
		local := conn.LocalAddr().String()

		l.r.Post(func() {
			lk := l.create(conn, peer, local)
			if lk == nil {
				_ = conn.Close()
				return
			}
			if err := lk.Attach(l.r); err != nil {
				_ = conn.Close()
				if l.log != nil {
					l.log.Error("listener: attach failed", err)
				}
			}
		})
	}
}

// isFatalAcceptError reports ENFILE/EMFILE per spec.md §4.5: the framework does
// not attempt heroic recovery from a process-wide descriptor exhaustion.
func isFatalAcceptError(e error) bool {
	msg := e.Error()
	return strings.Contains(msg, "too many open files") || strings.Contains(msg, "mfile") || strings.Contains(msg, "nfile")
}

// NewPlainCreator returns a CreateLinkage that wraps each accepted connection
// in a plain (non-TLS) AbstractIo.
func NewPlainCreator(handler func(conn net.Conn) linkage.Handler) CreateLinkage {
	return func(conn net.Conn, peer, local string) *linkage.Linkage {
		io := transport.NewPlainAccepted(conn)
		return linkage.New(io, handler(conn), peer, local)
	}
}

// NewTLSCreator returns a CreateLinkage that wraps each accepted connection in a
// TLS-server AbstractIo using cfg.
func NewTLSCreator(cfg libcrt.TLSConfig, handler func(conn net.Conn) linkage.Handler) CreateLinkage {
	return func(conn net.Conn, peer, local string) *linkage.Linkage {
		io := transport.NewTLSAccepted(conn, cfg)
		return linkage.New(io, handler(conn), peer, local)
	}
}
