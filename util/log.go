// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

const outputLimit = 1024
const flushChr = 0x0a // \n

// WorldLog represents a line buffered log output for either the Secure or
// the Non-secure World, on terminals Secure lines are shown in green and
// Non-secure ones in red.
type WorldLog struct {
	sync.Mutex

	// Secure selects the Secure World color
	Secure bool
	// Term is the optional terminal output
	Term *term.Terminal
	// Output is used when Term is nil (default os.Stdout)
	Output io.Writer

	buf bytes.Buffer
}

func (l *WorldLog) flush() {
	defer l.buf.Reset()

	if l.Term == nil {
		out := l.Output

		if out == nil {
			out = os.Stdout
		}

		out.Write(l.buf.Bytes())
		return
	}

	color := l.Term.Escape.Red

	if l.Secure {
		color = l.Term.Escape.Green
	}

	l.Term.Write(color)
	l.Term.Write(l.buf.Bytes())
	l.Term.Write(l.Term.Escape.Reset)
}

// WriteByte buffers a single character, the buffer is flushed on newlines
// or when full.
func (l *WorldLog) WriteByte(c byte) error {
	l.Lock()
	defer l.Unlock()

	l.buf.WriteByte(c)

	if c == flushChr || l.buf.Len() > outputLimit {
		l.flush()
	}

	return nil
}

// Write implements io.Writer.
func (l *WorldLog) Write(p []byte) (int, error) {
	for _, c := range p {
		l.WriteByte(c)
	}

	return len(p), nil
}
