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

// Package coroutine implements a per-thread cooperative scheduler of user-space
// execution contexts, modeled after a ucontext-based coroutine runtime: explicit
// yield/resume, a call-stack of resumed coroutines, and a compact reusable id table.
//
// Go has no user-space stack-switch primitive, so each Coroutine here owns a real
// goroutine parked on an unbuffered rendez-vous channel: exactly one coroutine's
// goroutine is ever unblocked ("RUNNING") per Scheduler at a time, which satisfies the
// same invariant a ucontext switch would. The shared-stack arena model (arena slots,
// copy-save/restore buffers) is not reproduced as a byte-copying device; only its
// observable contract — yield/resume, status transitions, id reuse — is kept.
package coroutine

// Status is the lifecycle state of a Coroutine.
type Status uint8

const (
	// StatusReady means the coroutine has been allocated but has never run.
	StatusReady Status = iota
	// StatusRunning means the coroutine currently holds the scheduler.
	StatusRunning
	// StatusSuspend means the coroutine yielded control and is parked.
	StatusSuspend
	// StatusDead is terminal: the entry function has returned or the
	// coroutine was never allocated.
	StatusDead
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusSuspend:
		return "suspend"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}
