// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package hw

import (
	"github.com/usbarmory/tamago/bits"
)

// Reg represents a 32-bit memory mapped register reachable through a Bus.
type Reg struct {
	Bus  Bus
	Addr uint32
}

// Read returns the register value.
func (r Reg) Read() uint32 {
	return r.Bus.Read(r.Addr)
}

// Write sets the register value.
func (r Reg) Write(val uint32) {
	r.Bus.Write(r.Addr, val)
}

// Get returns the register value at a specific bit position and with a
// bitmask applied.
func (r Reg) Get(pos int, mask int) uint32 {
	val := r.Read()
	return bits.GetN(&val, pos, mask)
}

// IsSet returns whether a specific bit position is set.
func (r Reg) IsSet(pos int) bool {
	return r.Get(pos, 1) == 1
}

// Modify performs a read-modify-write cycle, fn is passed the current value
// and the result is written back in a single store.
func (r Reg) Modify(fn func(val *uint32)) {
	val := r.Read()
	fn(&val)
	r.Write(val)
}

// Set sets a specific bit position.
func (r Reg) Set(pos int) {
	r.Modify(func(val *uint32) {
		bits.Set(val, pos)
	})
}

// Clear clears a specific bit position.
func (r Reg) Clear(pos int) {
	r.Modify(func(val *uint32) {
		bits.Clear(val, pos)
	})
}

// SetN sets a value at a specific bit position and with a bitmask applied.
func (r Reg) SetN(pos int, mask int, val uint32) {
	r.Modify(func(v *uint32) {
		bits.SetN(v, pos, mask, val)
	})
}

// Or sets all bits of val, leaving the others untouched.
func (r Reg) Or(val uint32) {
	r.Modify(func(v *uint32) {
		*v |= val
	})
}
