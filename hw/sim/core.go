// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"errors"
	"fmt"
	"runtime"
)

// Barrier implements hw.Core.
func (m *Machine) Barrier() {
	m.Lock()
	defer m.Unlock()

	m.Trace = append(m.Trace, Event{Op: OpBarrier})
}

// SetMSPNS implements hw.Core.
func (m *Machine) SetMSPNS(sp uint32) {
	m.Lock()
	defer m.Unlock()

	m.MSPNS = sp
	m.Trace = append(m.Trace, Event{Op: OpMSPNS, Val: sp})
}

// SetPSPNS implements hw.Core.
func (m *Machine) SetPSPNS(sp uint32) {
	m.Lock()
	defer m.Unlock()

	m.PSPNS = sp
	m.Trace = append(m.Trace, Event{Op: OpPSPNS, Val: sp})
}

// ControlNS implements hw.Core.
func (m *Machine) ControlNS() uint32 {
	m.Lock()
	defer m.Unlock()

	return m.Control
}

// SetControlNS implements hw.Core.
func (m *Machine) SetControlNS(val uint32) {
	m.Lock()
	defer m.Unlock()

	m.Control = val
	m.Trace = append(m.Trace, Event{Op: OpControlNS, Val: val})
}

// JumpNonSecure implements hw.Core, the calling goroutine is terminated as
// the Non-secure call never returns.
func (m *Machine) JumpNonSecure(entry uint32) {
	m.Lock()
	m.Entered = true
	m.Entry = entry
	m.Trace = append(m.Trace, Event{Op: OpJump, Val: entry})
	m.Unlock()

	runtime.Goexit()
}

// Halt implements hw.Core, the calling goroutine is terminated.
func (m *Machine) Halt() {
	m.Lock()
	m.Halted = true
	m.Trace = append(m.Trace, Event{Op: OpHalt})
	m.Unlock()

	runtime.Goexit()
}

// ErrReturned is returned by Run when the executed function returns, which
// for a boot sequence means that control was never handed over.
var ErrReturned = errors.New("returned without entering the Non-secure World or halting")

// Run executes fn in a dedicated goroutine, as the simulated Secure World
// thread, and waits for it to transfer control. It returns nil once the
// Non-secure World has been entered or the core halted, ErrReturned if fn
// returns, and an error describing the panic value if fn panics.
func (m *Machine) Run(fn func()) (err error) {
	done := make(chan error, 1)

	go func() {
		returned := false

		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
				return
			}

			if returned {
				done <- ErrReturned
				return
			}

			// runtime.Goexit
			done <- nil
		}()

		fn()
		returned = true
	}()

	return <-done
}
