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

// Package linkage implements the per-connection state machine that sits on top of
// a transport.AbstractIo: length-prefixed frame accumulation on read, a bounded
// write queue with partial-write and TLS same-pointer retry handling, the four
// jamming timers (connect/send/receive/idle), and graceful-drain shutdown.
//
// A Linkage never blocks and never touches the network directly from a caller's
// goroutine: every I/O step is driven by the per-tick poll the Linkage registers
// with its owning reactor.Reactor through Reactor.Attach, and every cross-thread
// mutation (Send, Disconnect, Detach) is routed through that reactor's command
// queue.
package linkage

// State is a Linkage's position in its connection lifecycle.
type State int

const (
	StateNew State = iota
	StateConnecting
	StateConnected
	StateReading
	StateWriting
	StateGracefulDrain
	StateShuttingDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReading:
		return "READING"
	case StateWriting:
		return "WRITING"
	case StateGracefulDrain:
		return "GRACEFUL_DRAIN"
	case StateShuttingDown:
		return "SHUTTING_DOWN"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// PendingAction encodes an in-progress transport step that the AbstractIo
// suspended with a "wants read"/"wants write" status.
type PendingAction int

const (
	PendingNone PendingAction = iota
	PendingRead
	PendingWrite
	PendingAccept
	PendingConnect
	PendingShutdown
)
