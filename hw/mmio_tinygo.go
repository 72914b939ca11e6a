// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tinygo

package hw

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO implements Bus with volatile accesses to physical addresses.
type MMIO struct{}

// Read performs a volatile 32-bit load, the address must be a word aligned
// peripheral register or memory location owned by the caller.
func (MMIO) Read(addr uint32) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

// Write performs a volatile 32-bit store, the address must be a word aligned
// peripheral register or memory location owned by the caller.
func (MMIO) Write(addr uint32, val uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), val)
}
