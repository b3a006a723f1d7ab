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

// Package transport implements the AbstractIo capability set: a small polymorphic
// Read/Write/Connect/Shutdown surface with two concrete variants, plain TCP and TLS,
// so Linkage never branches on the underlying transport.
package transport

// Status is the outcome of a Read or Write attempt.
type Status int

const (
	// StatusOK means n bytes were transferred; the caller should re-check for more.
	StatusOK Status = iota
	// StatusJammed means the call would have blocked. Read reports n = 0;
	// Write reports how many bytes went out before it would have blocked.
	StatusJammed
	// StatusWannaRead means the operation cannot proceed until the socket is
	// readable (used by the TLS handshake state machine).
	StatusWannaRead
	// StatusWannaWrite means the operation cannot proceed until the socket is
	// writable (used by the TLS handshake state machine).
	StatusWannaWrite
	// StatusClosed means the peer closed the connection (EOF).
	StatusClosed
	// StatusError means the operation failed; the caller should tear down the
	// connection after firing on_error.
	StatusError
	// StatusBug means the AbstractIo was used in a way its contract forbids
	// (e.g. Read or Write called on an outgoing transport before Connect).
	StatusBug
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusJammed:
		return "jammed"
	case StatusWannaRead:
		return "wanna_read"
	case StatusWannaWrite:
		return "wanna_write"
	case StatusClosed:
		return "closed"
	case StatusError:
		return "error"
	case StatusBug:
		return "bug"
	default:
		return "unknown"
	}
}

// Action is a next-step instruction returned by Initialize: what the caller (Linkage)
// should do immediately, and what it should next expect.
type Action int

const (
	// ActionNone means no immediate action is required; the transport is ready
	// for normal Read/Write.
	ActionNone Action = iota
	// ActionConnect means the caller must issue the outbound TCP connect.
	ActionConnect
	// ActionHandshake means a TLS handshake must run to completion (as either
	// server or client) before normal Read/Write is meaningful.
	ActionHandshake
)

// Interest is the read/write readiness a Linkage should register with its Reactor
// after Initialize or after a WANNA_* status.
type Interest struct {
	Read  bool
	Write bool
}
