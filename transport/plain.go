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

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	liberr "github.com/sabouaram/flinter/errors"
)

// plainIo is the non-TLS AbstractIo variant: a thin non-blocking wrapper over
// net.Conn. Go's net.Conn has no native non-blocking mode, so a zero-duration read
// deadline is used to probe for "would block" without holding the Linkage's goroutine
// hostage; this is the standard idiom for emulating O_NONBLOCK on a net.Conn.
type plainIo struct {
	mtx      sync.Mutex
	conn     net.Conn
	outgoing bool
}

// NewPlainAccepted builds an AbstractIo around an already-accepted connection. Used
// by the listener path, where Initialize needs no further action.
func NewPlainAccepted(conn net.Conn) AbstractIo {
	return &plainIo{conn: conn}
}

// NewPlainOutgoing builds an AbstractIo that has not yet dialed its peer. Initialize
// will return ActionConnect; the caller must call Connect before Read/Write.
func NewPlainOutgoing() AbstractIo {
	return &plainIo{outgoing: true}
}

func (p *plainIo) Initialize() (Action, Action, Interest, liberr.Error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.outgoing && p.conn == nil {
		return ActionConnect, ActionNone, Interest{}, nil
	}
	return ActionNone, ActionNone, Interest{Read: true}, nil
}

func (p *plainIo) Connect(ctx context.Context, address string) liberr.Error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.conn != nil {
		return ErrorAlreadyConnected.Error(nil)
	}

	var d net.Dialer
	conn, e := d.DialContext(ctx, "tcp", address)
	if e != nil {
		return ErrorNotConnected.Error(e)
	}

	p.conn = conn
	return nil
}

func (p *plainIo) Read(buf []byte) (int, Status) {
	p.mtx.Lock()
	conn := p.conn
	p.mtx.Unlock()

	if conn == nil {
		return 0, StatusBug
	}

	_ = conn.SetReadDeadline(time.Now())
	n, e := conn.Read(buf)
	if n > 0 {
		return n, StatusOK
	}
	if e == nil {
		return 0, StatusOK
	}
	if errors.Is(e, io.EOF) {
		return 0, StatusClosed
	}
	if ne, ok := e.(net.Error); ok && ne.Timeout() {
		return 0, StatusJammed
	}
	return 0, StatusError
}

func (p *plainIo) Write(buf []byte) (int, Status) {
	p.mtx.Lock()
	conn := p.conn
	p.mtx.Unlock()

	if conn == nil {
		return 0, StatusBug
	}

	_ = conn.SetWriteDeadline(time.Now())
	n, e := conn.Write(buf)
	if e == nil {
		return n, StatusOK
	}
	if ne, ok := e.(net.Error); ok && ne.Timeout() {
		return n, StatusJammed
	}
	if errors.Is(e, io.ErrClosedPipe) {
		return n, StatusClosed
	}
	return n, StatusError
}

func (p *plainIo) Shutdown() liberr.Error {
	p.mtx.Lock()
	conn := p.conn
	p.mtx.Unlock()

	if conn == nil {
		return nil
	}
	if e := conn.Close(); e != nil {
		return ErrorNotConnected.Error(e)
	}
	return nil
}

func (p *plainIo) PeerCertificate() *PeerCertificate {
	return nil
}
