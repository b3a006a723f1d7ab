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

package reactor

import "sync"

// commandQueue is a multi-producer, single-consumer mailbox: any goroutine may push a
// Runnable, but only the owning Reactor's run loop drains it, so queued commands always
// execute on the reactor's own goroutine.
type commandQueue struct {
	mtx     sync.Mutex
	pending []Runnable
	notify  chan struct{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{
		notify: make(chan struct{}, 1),
	}
}

// push enqueues fn and signals notify without blocking; the Reactor's run loop
// does not wait on notify and picks the command up on its next tick. Safe to
// call from any goroutine, including from inside a Runnable running on the
// reactor itself.
func (q *commandQueue) push(fn Runnable) {
	q.mtx.Lock()
	q.pending = append(q.pending, fn)
	q.mtx.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// drain removes and returns every currently queued command, in FIFO order.
func (q *commandQueue) drain() []Runnable {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}
