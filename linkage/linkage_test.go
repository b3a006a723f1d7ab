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

package linkage_test

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/sabouaram/flinter/linkage"
	"github.com/sabouaram/flinter/reactor"
	"github.com/sabouaram/flinter/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordingHandler frames messages as a single length-byte prefix followed by
// that many payload bytes, and records every frame, connect and disconnect.
type recordingHandler struct {
	mtx          sync.Mutex
	messages     [][]byte
	connected    int32
	disconnected int32
	lastErr      error

	rejectConnect bool
	invalidLength bool
}

func (h *recordingHandler) GetMessageLength(buf []byte) int {
	if h.invalidLength {
		return -1
	}
	if len(buf) < 1 {
		return 0
	}
	need := int(buf[0])
	if len(buf) < 1+need {
		return 0
	}
	return 1 + need
}

func (h *recordingHandler) OnMessage(l *Linkage, frame []byte) int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	cp := make([]byte, len(frame)-1)
	copy(cp, frame[1:])
	h.messages = append(h.messages, cp)
	return 1
}

func (h *recordingHandler) HashMessage(buf []byte) int { return -1 }

func (h *recordingHandler) OnConnected(l *Linkage) bool {
	atomic.AddInt32(&h.connected, 1)
	return !h.rejectConnect
}

func (h *recordingHandler) OnDisconnected(l *Linkage) {
	atomic.AddInt32(&h.disconnected, 1)
}

func (h *recordingHandler) OnError(l *Linkage, reading bool, err error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.lastErr = err
}

func (h *recordingHandler) Cleanup(l *Linkage, now int64) bool { return true }

func (h *recordingHandler) frameCount() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return len(h.messages)
}

func (h *recordingHandler) frame(i int) []byte {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.messages[i]
}

func frame(payload string) []byte {
	out := make([]byte, 1+len(payload))
	out[0] = byte(len(payload))
	copy(out[1:], payload)
	return out
}

var _ = Describe("Linkage", func() {
	var (
		ln  net.Listener
		r   *reactor.Reactor
		ctx context.Context
		can context.CancelFunc
	)

	BeforeEach(func() {
		var e error
		ln, e = net.Listen("tcp", "127.0.0.1:0")
		Expect(e).ToNot(HaveOccurred())

		r = reactor.New(nil, nil)
		ctx, can = context.WithCancel(context.Background())
		Expect(r.Start(ctx)).To(Succeed())
	})

	AfterEach(func() {
		can()
		_ = r.Stop()
		_ = ln.Close()
	})

	It("delivers a full frame end to end and fires OnConnected on both sides", func() {
		serverIo := make(chan transport.AbstractIo, 1)
		go func() {
			conn, e := ln.Accept()
			if e == nil {
				serverIo <- transport.NewPlainAccepted(conn)
			}
		}()

		clientHandler := &recordingHandler{}
		client := New(transport.NewPlainOutgoing(), clientHandler, ln.Addr().String(), "")
		Expect(client.Attach(r)).To(Succeed())

		var accepted transport.AbstractIo
		Eventually(serverIo, time.Second).Should(Receive(&accepted))

		serverHandler := &recordingHandler{}
		server := New(accepted, serverHandler, "", "")
		Expect(server.Attach(r)).To(Succeed())

		Eventually(func() int32 { return atomic.LoadInt32(&clientHandler.connected) }, time.Second).Should(Equal(int32(1)))
		Eventually(func() int32 { return atomic.LoadInt32(&serverHandler.connected) }, time.Second).Should(Equal(int32(1)))

		Expect(client.Send(frame("hello"))).To(BeTrue())

		Eventually(serverHandler.frameCount, time.Second).Should(Equal(1))
		Expect(serverHandler.frame(0)).To(Equal([]byte("hello")))
	})

	It("fires OnDisconnected exactly once after Disconnect", func() {
		serverIo := make(chan transport.AbstractIo, 1)
		go func() {
			conn, e := ln.Accept()
			if e == nil {
				serverIo <- transport.NewPlainAccepted(conn)
			}
		}()

		clientHandler := &recordingHandler{}
		client := New(transport.NewPlainOutgoing(), clientHandler, ln.Addr().String(), "")
		Expect(client.Attach(r)).To(Succeed())

		var accepted transport.AbstractIo
		Eventually(serverIo, time.Second).Should(Receive(&accepted))
		serverHandler := &recordingHandler{}
		server := New(accepted, serverHandler, "", "")
		Expect(server.Attach(r)).To(Succeed())

		client.Disconnect(true)

		Eventually(func() int32 { return atomic.LoadInt32(&clientHandler.disconnected) }, time.Second).Should(Equal(int32(1)))
		Eventually(func() State { return client.State() }, time.Second).Should(Equal(StateClosed))

		Consistently(func() int32 { return atomic.LoadInt32(&clientHandler.disconnected) }, 50*time.Millisecond).Should(Equal(int32(1)))
	})

	It("tears the connection down when GetMessageLength reports an invalid frame", func() {
		serverIo := make(chan transport.AbstractIo, 1)
		go func() {
			conn, e := ln.Accept()
			if e == nil {
				serverIo <- transport.NewPlainAccepted(conn)
			}
		}()

		clientHandler := &recordingHandler{}
		client := New(transport.NewPlainOutgoing(), clientHandler, ln.Addr().String(), "")
		Expect(client.Attach(r)).To(Succeed())

		var accepted transport.AbstractIo
		Eventually(serverIo, time.Second).Should(Receive(&accepted))
		serverHandler := &recordingHandler{invalidLength: true}
		server := New(accepted, serverHandler, "", "")
		Expect(server.Attach(r)).To(Succeed())

		Expect(client.Send([]byte("x"))).To(BeTrue())

		Eventually(func() State { return server.State() }, time.Second).Should(Equal(StateClosed))
		Eventually(func() int32 { return atomic.LoadInt32(&serverHandler.disconnected) }, time.Second).Should(Equal(int32(1)))
	})

	It("refuses Send once graceful shutdown has started", func() {
		clientHandler := &recordingHandler{}
		client := New(transport.NewPlainOutgoing(), clientHandler, ln.Addr().String(), "")
		Expect(client.Attach(r)).To(Succeed())

		client.Disconnect(false)
		Eventually(func() State { return client.State() }, time.Second).Should(Equal(StateClosed))

		Expect(client.Send([]byte("x"))).To(BeFalse())
	})
})
