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

package server

import (
	"sync"

	libcrt "github.com/sabouaram/flinter/certificates"
	"github.com/sabouaram/flinter/linkage"
)

// outgoingInfo records everything needed to (re)materialize an outgoing
// connection transparently (spec.md §4.6 "Connect path"/"Reconnect policy"):
// the address, the handler factory, and the TLS config if any. It survives
// across reconnects; only Forget removes it. mtx guards against a connection
// being dialed twice when Send races Send on the same not-yet-materialized
// channel.
type outgoingInfo struct {
	mtx sync.Mutex

	address     string
	makeHandler func() linkage.Handler
	tls         libcrt.TLSConfig // nil for plain
	serverName  string

	forgetPending bool
}
