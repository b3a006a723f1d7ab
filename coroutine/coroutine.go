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

package coroutine

import (
	"errors"
)

// ErrNotRunning is returned by Yield when called outside any running coroutine.
var ErrNotRunning = errors.New("coroutine: yield called on the root context")

// ErrAlreadyRunning is returned by Resume when the target coroutine is already
// the one currently holding the scheduler.
var ErrAlreadyRunning = errors.New("coroutine: resume called on a running coroutine")

// Entry is the body of a coroutine. It receives the owning Scheduler (so it can call
// Yield) and the opaque argument passed at creation time.
type Entry func(s *Scheduler, ud any)

// coroutine is one entry of the Scheduler's id table.
type coroutine struct {
	id       int
	status   Status
	entry    Entry
	ud       any
	resumeCh chan struct{}
	started  bool
}

const rootID = -1

// initialTableCapacity is the starting size of a Scheduler's id table; it doubles
// on exhaustion, mirroring the original's id-table growth contract.
const initialTableCapacity = 16
