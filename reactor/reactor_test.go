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

package reactor_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/sabouaram/flinter/reactor"

	libdur "github.com/sabouaram/flinter/duration"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reactor", func() {
	var (
		r   *Reactor
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		r = New(nil, nil)
	})

	AfterEach(func() {
		if r.IsRunning() {
			_ = r.Stop()
		}
	})

	Describe("Start/Stop", func() {
		It("rejects a second Start while already running", func() {
			Expect(r.Start(ctx)).To(Succeed())

			err := r.Start(ctx)
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(ErrorAlreadyRunning)).To(BeTrue())
		})

		It("rejects Stop when not running", func() {
			err := r.Stop()
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(ErrorNotRunning)).To(BeTrue())
		})
	})

	Describe("Post", func() {
		It("runs posted commands on the reactor goroutine", func() {
			Expect(r.Start(ctx)).To(Succeed())

			done := make(chan struct{})
			r.Post(func() { close(done) })

			Eventually(done, time.Second).Should(BeClosed())
		})

		It("serializes many concurrently posted commands", func() {
			Expect(r.Start(ctx)).To(Succeed())

			var counter int64
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					r.Post(func() { atomic.AddInt64(&counter, 1) })
				}()
			}
			wg.Wait()

			Eventually(func() int64 { return atomic.LoadInt64(&counter) }, time.Second).Should(Equal(int64(100)))
		})
	})

	Describe("ArmTimer", func() {
		It("fires once after the requested delay", func() {
			Expect(r.Start(ctx)).To(Succeed())

			fired := make(chan struct{})
			_, err := r.ArmTimer(libdur.Duration(20*time.Millisecond), func() { close(fired) })
			Expect(err).To(BeNil())

			Eventually(fired, time.Second).Should(BeClosed())
		})

		It("rejects a delay beyond the wheel horizon", func() {
			Expect(r.Start(ctx)).To(Succeed())

			_, err := r.ArmTimer(libdur.Duration(time.Hour), func() {})
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(ErrorTimerHorizon)).To(BeTrue())
		})

		It("can be cancelled before it fires", func() {
			Expect(r.Start(ctx)).To(Succeed())

			var fired int32
			id, err := r.ArmTimer(libdur.Duration(50*time.Millisecond), func() { atomic.AddInt32(&fired, 1) })
			Expect(err).To(BeNil())

			r.CancelTimer(id)
			Consistently(func() int32 { return atomic.LoadInt32(&fired) }, 100*time.Millisecond).Should(Equal(int32(0)))
		})
	})

	Describe("Attach/Detach", func() {
		It("invokes an attached poll function every tick until detached", func() {
			Expect(r.Start(ctx)).To(Succeed())

			var ticks int32
			token := r.Attach(func() { atomic.AddInt32(&ticks, 1) })

			Eventually(func() int32 { return atomic.LoadInt32(&ticks) }, time.Second).Should(BeNumerically(">=", 3))

			r.Detach(token)
			snapshot := atomic.LoadInt32(&ticks)
			Consistently(func() int32 { return atomic.LoadInt32(&ticks) }, 20*time.Millisecond).Should(Equal(snapshot))
		})
	})

	Describe("ArmInterval", func() {
		It("fires repeatedly until cancelled", func() {
			Expect(r.Start(ctx)).To(Succeed())

			var count int32
			id, err := r.ArmInterval(libdur.Duration(10*time.Millisecond), func() { atomic.AddInt32(&count, 1) })
			Expect(err).To(BeNil())

			Eventually(func() int32 { return atomic.LoadInt32(&count) }, time.Second).Should(BeNumerically(">=", 3))
			r.CancelTimer(id)
		})
	})
})
