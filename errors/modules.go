/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

const (
	MinPkgCertificate = 300
	MinPkgIOUtils     = 1400
	MinPkgLogger      = 1600
	MinPkgViper       = 3400

	// MinPkgCoroutine covers the user-space scheduler and shared-stack arena.
	MinPkgCoroutine = 3500
	// MinPkgTransport covers the AbstractIo plain/TLS transport adapters.
	MinPkgTransport = 3520
	// MinPkgLinkage covers the per-connection state machine.
	MinPkgLinkage = 3540
	// MinPkgListener covers the accepting-socket wrapper.
	MinPkgListener = 3560
	// MinPkgServer covers the channel table, reactor pool and worker pool.
	MinPkgServer = 3580
	// MinPkgReactor covers the event loop and timer wheel.
	MinPkgReactor = 3600

	MinAvailable = 4000

	// MIN_AVAILABLE @Deprecated use MinAvailable constant
	MIN_AVAILABLE = MinAvailable
)
