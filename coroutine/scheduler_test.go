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

package coroutine_test

import (
	"fmt"

	. "github.com/sabouaram/flinter/coroutine"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scheduler", func() {
	var sched *Scheduler

	BeforeEach(func() {
		sched = NewScheduler(nil)
	})

	AfterEach(func() {
		sched.Close()
	})

	Describe("New", func() {
		It("allocates ids starting at zero and reuses freed slots", func() {
			a := sched.New(func(s *Scheduler, ud any) {}, nil)
			Expect(a).To(Equal(0))

			Expect(sched.Resume(a)).To(Succeed())
			Expect(sched.Status(a)).To(Equal(StatusDead))

			b := sched.New(func(s *Scheduler, ud any) {}, nil)
			Expect(b).To(Equal(0), "the slot freed by a's termination should be reused")
		})

		It("grows the id table past its initial capacity", func() {
			const n = 2*16 + 1
			ids := make([]int, 0, n)
			for i := 0; i < n; i++ {
				id := sched.New(func(s *Scheduler, ud any) {}, nil)
				ids = append(ids, id)
			}
			Expect(ids).To(HaveLen(n))

			seen := map[int]bool{}
			for _, id := range ids {
				Expect(seen[id]).To(BeFalse(), "ids must be unique while live")
				seen[id] = true
			}

			for _, id := range ids {
				Expect(sched.Status(id)).To(Equal(StatusReady))
			}
		})
	})

	Describe("status transitions", func() {
		It("moves Ready -> Running -> Suspend -> Running -> Dead", func() {
			var seenRunning bool
			id := sched.New(func(s *Scheduler, ud any) {
				seenRunning = s.Status(s.Running()) == StatusRunning
				_ = s.Yield()
			}, nil)
			Expect(sched.Status(id)).To(Equal(StatusReady))

			Expect(sched.Resume(id)).To(Succeed())
			Expect(seenRunning).To(BeTrue())
			Expect(sched.Status(id)).To(Equal(StatusSuspend))

			Expect(sched.Resume(id)).To(Succeed())
			Expect(sched.Status(id)).To(Equal(StatusDead))
		})

		It("returns ErrAlreadyRunning when a coroutine resumes itself", func() {
			var got error
			id := sched.New(func(s *Scheduler, ud any) {
				got = s.Resume(s.Running())
			}, nil)
			Expect(sched.Resume(id)).To(Succeed())
			Expect(got).To(MatchError(ErrAlreadyRunning))
		})

		It("returns ErrNotRunning when Yield is called from the root context", func() {
			Expect(sched.Yield()).To(MatchError(ErrNotRunning))
		})
	})

	Describe("LiveCount", func() {
		It("tracks allocations and terminations", func() {
			Expect(sched.LiveCount()).To(Equal(int64(0)))

			id := sched.New(func(s *Scheduler, ud any) {}, nil)
			Expect(sched.LiveCount()).To(Equal(int64(1)))

			Expect(sched.Resume(id)).To(Succeed())
			Expect(sched.LiveCount()).To(Equal(int64(0)))
		})
	})

	Describe("interleaved yield/resume", func() {
		It("produces alternating output across two coroutines resumed in turn", func() {
			var out []string

			a := sched.New(func(s *Scheduler, ud any) {
				for i := 0; i < 2; i++ {
					out = append(out, fmt.Sprintf("A%d", i))
					_ = s.Yield()
				}
			}, nil)

			b := sched.New(func(s *Scheduler, ud any) {
				for i := 0; i < 2; i++ {
					out = append(out, fmt.Sprintf("B%d", i))
					_ = s.Yield()
				}
			}, nil)

			for i := 0; i < 2; i++ {
				Expect(sched.Resume(a)).To(Succeed())
				Expect(sched.Resume(b)).To(Succeed())
			}

			Expect(out).To(Equal([]string{"A0", "B0", "A1", "B1"}))
		})
	})
})
