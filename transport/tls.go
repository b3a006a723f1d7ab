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
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	libcrt "github.com/sabouaram/flinter/certificates"
	liberr "github.com/sabouaram/flinter/errors"
)

// tlsIo is the TLS AbstractIo variant: a handshake state machine on top of a
// crypto/tls.Conn, mapping the library's blocking Handshake/Read/Write into the
// same non-blocking probe idiom plainIo uses, via zero-duration deadlines.
type tlsIo struct {
	mtx         sync.Mutex
	conn        *tls.Conn
	raw         net.Conn
	cfg         libcrt.TLSConfig
	serverName  string
	outgoing    bool
	handshaken  bool
	peerCert    *PeerCertificate
}

// NewTLSAccepted wraps an already-accepted connection as a TLS server. Initialize
// returns ActionHandshake.
func NewTLSAccepted(conn net.Conn, cfg libcrt.TLSConfig) AbstractIo {
	t := &tlsIo{raw: conn, cfg: cfg}
	t.conn = tls.Server(conn, cfg.TlsConfig(""))
	return t
}

// NewTLSOutgoing builds a TLS client AbstractIo that has not yet dialed its peer.
// Initialize returns ActionConnect; Connect then ActionHandshake follows internally
// once the TCP connection succeeds.
func NewTLSOutgoing(cfg libcrt.TLSConfig, serverName string) AbstractIo {
	return &tlsIo{cfg: cfg, serverName: serverName, outgoing: true}
}

func (t *tlsIo) Initialize() (Action, Action, Interest, liberr.Error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.outgoing && t.raw == nil {
		return ActionConnect, ActionHandshake, Interest{}, nil
	}
	return ActionHandshake, ActionNone, Interest{Read: true, Write: true}, nil
}

func (t *tlsIo) Connect(ctx context.Context, address string) liberr.Error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.raw != nil {
		return ErrorAlreadyConnected.Error(nil)
	}

	var d net.Dialer
	conn, e := d.DialContext(ctx, "tcp", address)
	if e != nil {
		return ErrorNotConnected.Error(e)
	}

	t.raw = conn
	t.conn = tls.Client(conn, t.cfg.TlsConfig(t.serverName))
	return nil
}

// probeHandshake drives one non-blocking attempt at completing the handshake.
func (t *tlsIo) probeHandshake() Status {
	_ = t.raw.SetDeadline(time.Now())
	e := t.conn.HandshakeContext(context.Background())
	if e == nil {
		t.handshaken = true
		t.peerCert = extractPeerCertificate(t.conn)
		return StatusOK
	}

	if wantsWrite(e) {
		return StatusWannaWrite
	}
	if isTimeout(e) {
		return StatusWannaRead
	}
	if errors.Is(e, io.EOF) {
		return StatusClosed
	}
	return StatusError
}

func (t *tlsIo) Read(buf []byte) (int, Status) {
	t.mtx.Lock()
	conn := t.conn
	t.mtx.Unlock()

	if conn == nil {
		return 0, StatusBug
	}

	if !t.handshaken {
		if st := t.probeHandshake(); st != StatusOK {
			return 0, st
		}
	}

	_ = t.raw.SetReadDeadline(time.Now())
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
	if isTimeout(e) {
		return 0, StatusJammed
	}
	return 0, StatusError
}

func (t *tlsIo) Write(buf []byte) (int, Status) {
	t.mtx.Lock()
	conn := t.conn
	t.mtx.Unlock()

	if conn == nil {
		return 0, StatusBug
	}

	if !t.handshaken {
		if st := t.probeHandshake(); st != StatusOK {
			return 0, st
		}
	}

	_ = t.raw.SetWriteDeadline(time.Now())
	n, e := conn.Write(buf)
	if e == nil {
		return n, StatusOK
	}
	if isTimeout(e) {
		return n, StatusJammed
	}
	if errors.Is(e, io.ErrClosedPipe) {
		return n, StatusClosed
	}
	return n, StatusError
}

func (t *tlsIo) Shutdown() liberr.Error {
	t.mtx.Lock()
	conn := t.conn
	t.mtx.Unlock()

	if conn == nil {
		return nil
	}
	if e := conn.Close(); e != nil {
		return ErrorNotConnected.Error(e)
	}
	return nil
}

func (t *tlsIo) PeerCertificate() *PeerCertificate {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.peerCert
}

func extractPeerCertificate(conn *tls.Conn) *PeerCertificate {
	st := conn.ConnectionState()
	if len(st.PeerCertificates) == 0 {
		return nil
	}
	c := st.PeerCertificates[0]
	return &PeerCertificate{
		Subject: c.Subject.String(),
		Issuer:  c.Issuer.String(),
		Serial:  c.SerialNumber.String(),
		Version: int(st.Version),
		Cipher:  st.CipherSuite,
	}
}

func isTimeout(e error) bool {
	var ne net.Error
	return errors.As(e, &ne) && ne.Timeout()
}

// wantsWrite distinguishes a write-direction block from a read-direction one by
// inspecting the underlying *net.OpError's Op field, since crypto/tls surfaces both
// as the same net.Error-with-Timeout shape.
func wantsWrite(e error) bool {
	var oe *net.OpError
	if errors.As(e, &oe) {
		return oe.Op == "write" && isTimeout(e)
	}
	return false
}
