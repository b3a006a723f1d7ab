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

// Tuner hooks into each reactor slot's lifecycle. OnInitialize runs before the
// slot's reactor starts accepting work; returning false aborts that slot
// (spec.md §4.2 step 1, "on_initialize hook... aborts the loop if it returns
// false"). OnThreadStart/OnThreadFinished bracket the slot's lifetime and are
// where per-thread affinity or metrics registration belongs.
type Tuner interface {
	OnInitialize(slot int) bool
	OnThreadStart(slot int)
	OnThreadFinished(slot int)
}

// EasyTuner is a Tuner with every method defaulted to a no-op/true, so callers
// only need to set the funcs they care about.
type EasyTuner struct {
	OnInitializeFunc    func(slot int) bool
	OnThreadStartFunc   func(slot int)
	OnThreadFinishedFunc func(slot int)
}

func (t *EasyTuner) OnInitialize(slot int) bool {
	if t == nil || t.OnInitializeFunc == nil {
		return true
	}
	return t.OnInitializeFunc(slot)
}

func (t *EasyTuner) OnThreadStart(slot int) {
	if t == nil || t.OnThreadStartFunc == nil {
		return
	}
	t.OnThreadStartFunc(slot)
}

func (t *EasyTuner) OnThreadFinished(slot int) {
	if t == nil || t.OnThreadFinishedFunc == nil {
		return
	}
	t.OnThreadFinishedFunc(slot)
}
