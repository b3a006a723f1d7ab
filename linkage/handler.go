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

package linkage

// Handler is the per-connection callback contract a caller supplies to a Listener
// or a Connect call, either as one shared instance or one built fresh per
// connection by a factory. GetMessageLength and OnMessage are mandatory; the rest
// have defaults applied by EasyHandler.
type Handler interface {
	// GetMessageLength inspects buf (everything read so far for the current frame)
	// and returns the full frame length (header included) once known, 0 if more
	// bytes are needed, or a negative value to terminate the connection as invalid.
	GetMessageLength(buf []byte) int

	// OnMessage receives exactly one complete frame. A return of 0 triggers a
	// half-close of the reader and a graceful drain; a negative value triggers
	// immediate teardown; a positive value continues normally.
	OnMessage(l *Linkage, frame []byte) int

	// HashMessage selects a worker-pool slot for this frame. A negative value
	// (the default) means any worker may take it.
	HashMessage(buf []byte) int

	// OnConnected fires once the transport is usable. Returning false refuses
	// the connection and tears it down immediately.
	OnConnected(l *Linkage) bool

	// OnDisconnected fires exactly once, after OnError (if any), when the
	// Linkage transitions to CLOSED.
	OnDisconnected(l *Linkage)

	// OnError fires on a read (reading=true) or write (reading=false) failure,
	// before OnDisconnected.
	OnError(l *Linkage, reading bool, err error)

	// Cleanup is called about once per second from the Linkage's own per-tick
	// poll on the reactor goroutine. Returning false requests teardown.
	Cleanup(l *Linkage, now int64) bool
}

// EasyHandler is a Handler with every optional method defaulted, so callers only
// need to supply GetMessageLength and OnMessage. Embed it and override what you
// need.
type EasyHandler struct {
	GetMessageLengthFunc func(buf []byte) int
	OnMessageFunc        func(l *Linkage, frame []byte) int
	HashMessageFunc      func(buf []byte) int
	OnConnectedFunc      func(l *Linkage) bool
	OnDisconnectedFunc   func(l *Linkage)
	OnErrorFunc          func(l *Linkage, reading bool, err error)
	CleanupFunc          func(l *Linkage, now int64) bool
}

func (h *EasyHandler) GetMessageLength(buf []byte) int {
	if h.GetMessageLengthFunc != nil {
		return h.GetMessageLengthFunc(buf)
	}
	return -1
}

func (h *EasyHandler) OnMessage(l *Linkage, frame []byte) int {
	if h.OnMessageFunc != nil {
		return h.OnMessageFunc(l, frame)
	}
	return 1
}

func (h *EasyHandler) HashMessage(buf []byte) int {
	if h.HashMessageFunc != nil {
		return h.HashMessageFunc(buf)
	}
	return -1
}

func (h *EasyHandler) OnConnected(l *Linkage) bool {
	if h.OnConnectedFunc != nil {
		return h.OnConnectedFunc(l)
	}
	return true
}

func (h *EasyHandler) OnDisconnected(l *Linkage) {
	if h.OnDisconnectedFunc != nil {
		h.OnDisconnectedFunc(l)
	}
}

func (h *EasyHandler) OnError(l *Linkage, reading bool, err error) {
	if h.OnErrorFunc != nil {
		h.OnErrorFunc(l, reading, err)
	}
}

func (h *EasyHandler) Cleanup(l *Linkage, now int64) bool {
	if h.CleanupFunc != nil {
		return h.CleanupFunc(l, now)
	}
	return true
}
