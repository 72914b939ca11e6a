// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package hw defines the hardware access capability used by the Secure
// Partition Manager.
//
// Implementations of Bus and Core are the only code allowed to dereference
// physical addresses or to touch core registers which are not memory mapped.
// All methods assume that the caller holds exclusive boot-time ownership of
// the accessed peripheral, which holds for the single threaded prologue which
// runs before the Non-secure World is entered.
package hw

// Bus provides 32-bit access to memory mapped registers and memory.
type Bus interface {
	// Read returns the 32-bit word at a word aligned physical address.
	Read(addr uint32) uint32
	// Write stores a 32-bit word at a word aligned physical address.
	Write(addr uint32, val uint32)
}

// Core provides access to ARMv8-M core state that is not memory mapped.
type Core interface {
	// Barrier issues a data synchronization barrier followed by an
	// instruction synchronization barrier, all previous register writes
	// are visible to subsequently fetched instructions once it returns.
	Barrier()

	// SetMSPNS sets the Non-secure Main Stack Pointer.
	SetMSPNS(sp uint32)
	// SetPSPNS sets the Non-secure Process Stack Pointer.
	SetPSPNS(sp uint32)
	// ControlNS returns the Non-secure CONTROL register.
	ControlNS() uint32
	// SetControlNS sets the Non-secure CONTROL register.
	SetControlNS(val uint32)

	// JumpNonSecure branches to entry using the Non-secure calling
	// convention, Secure register state is cleared by hardware and the
	// call never returns.
	JumpNonSecure(entry uint32)

	// Halt disables interrupts and stops execution in a debuggable fault
	// state, it never returns.
	Halt()
}
