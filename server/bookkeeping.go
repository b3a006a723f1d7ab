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

import "github.com/sabouaram/flinter/linkage"

// bookkeepingHandler wraps every connection's Handler (embedding it so every
// other method is promoted unchanged) to release the Server-level state a
// Linkage's teardown must clear: the slot's channel-table entry, the
// incoming-connection counter, and a pending Forget on an outgoing route.
type bookkeepingHandler struct {
	linkage.Handler
	srv      *Server
	thread   *reactorThread
	ch       Channel
	incoming bool
}

func (b *bookkeepingHandler) OnDisconnected(l *linkage.Linkage) {
	b.Handler.OnDisconnected(l)
	b.thread.unregister(b.ch)

	if b.srv.metrics != nil {
		b.srv.metrics.DecLiveLinkages(b.thread.slot)
	}

	if b.incoming {
		b.srv.incoming.Add(-1)
		return
	}

	if info, ok := b.thread.route(b.ch); ok && info.forgetPending {
		b.thread.clearRoute(b.ch)
	}
}
