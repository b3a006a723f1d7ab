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

package listener

import (
	"context"
	"net"
	"syscall"
	"time"

	libcrt "github.com/sabouaram/flinter/certificates"
)

// Options configures a Listener's bound socket. NoDelay and ReuseAddr default to
// true via DefaultOptions; DeferAccept is honored only on Linux (TCP_DEFER_ACCEPT),
// a no-op elsewhere.
type Options struct {
	Network string // "tcp", "tcp4", "tcp6"
	Address string // bind interface:port, e.g. "0.0.0.0:9000"

	ReuseAddr   bool
	KeepAlive   time.Duration // 0 disables TCP keepalive on accepted sockets
	NoDelay     bool
	DeferAccept bool

	// TLS, if non-nil, wraps every accepted connection in a TLS server handshake.
	TLS libcrt.TLSConfig
}

// DefaultOptions returns Options with SO_REUSEADDR and TCP_NODELAY on, a 60s
// keepalive, and TLS disabled.
func DefaultOptions(network, address string) Options {
	return Options{
		Network:   network,
		Address:   address,
		ReuseAddr: true,
		KeepAlive: 60 * time.Second,
		NoDelay:   true,
	}
}

func (o Options) listenConfig() net.ListenConfig {
	return net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				if o.ReuseAddr {
					if e := setReuseAddr(fd); e != nil {
						ctrlErr = e
						return
					}
				}
				if o.DeferAccept {
					if e := setDeferAccept(fd); e != nil {
						ctrlErr = e
						return
					}
				}
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}
}

// listen binds the socket described by o, applying its Control-time options.
func listen(ctx context.Context, o Options) (net.Listener, error) {
	return o.listenConfig().Listen(ctx, o.Network, o.Address)
}

// applyAcceptOptions sets the per-connection socket options (keepalive, nodelay)
// that, unlike SO_REUSEADDR/TCP_DEFER_ACCEPT, are applied through the standard
// net.TCPConn API rather than a raw Control callback.
func applyAcceptOptions(conn net.Conn, o Options) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.SetNoDelay(o.NoDelay)
	if o.KeepAlive > 0 {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(o.KeepAlive)
	} else {
		_ = tc.SetKeepAlive(false)
	}
}
