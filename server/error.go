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

import "github.com/sabouaram/flinter/errors"

const (
	ErrorAlreadyInitialized errors.CodeError = iota + errors.MinPkgServer
	ErrorNotInitialized
	ErrorThreadInitFailed
	ErrorTooManyIncoming
	ErrorUnknownChannel
	ErrorChannelWrongSlot
	ErrorNoSlots
	ErrorFileDescriptorLimit
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorAlreadyInitialized)
	errors.RegisterIdFctMessage(ErrorAlreadyInitialized, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorAlreadyInitialized:
		return "server is already initialized"
	case ErrorNotInitialized:
		return "server is not initialized"
	case ErrorThreadInitFailed:
		return "reactor thread failed to initialize"
	case ErrorTooManyIncoming:
		return "maximum incoming connections reached"
	case ErrorUnknownChannel:
		return "channel is not known to this server"
	case ErrorChannelWrongSlot:
		return "channel does not belong to this slot"
	case ErrorNoSlots:
		return "server has no reactor slots configured"
	case ErrorFileDescriptorLimit:
		return "could not raise process file descriptor limit to the configured minimum"
	}

	return ""
}
