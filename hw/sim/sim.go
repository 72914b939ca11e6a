// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sim implements a simulated nRF9160 register set and ARMv8-M core,
// satisfying hw.Bus and hw.Core, to exercise the Secure Partition Manager
// without hardware.
//
// The model covers the register behaviour that matters to partitioning:
// AIRCR write key gating and VECTKEYSTAT read back, SPU PERM read-only fields
// and LOCK bits, plain read/write storage for everything else. Every write,
// barrier and core register access is appended to an ordered trace.
package sim

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/usbarmory/nrf-spm/armv8m"
	"github.com/usbarmory/nrf-spm/hw"
	"github.com/usbarmory/nrf-spm/spu"
)

// Op represents a traced operation.
type Op int

const (
	OpWrite Op = iota
	OpBarrier
	OpMSPNS
	OpPSPNS
	OpControlNS
	OpJump
	OpHalt
)

func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpBarrier:
		return "barrier"
	case OpMSPNS:
		return "msp_ns"
	case OpPSPNS:
		return "psp_ns"
	case OpControlNS:
		return "control_ns"
	case OpJump:
		return "jump"
	case OpHalt:
		return "halt"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// Event represents one traced operation, Ignored is set for register writes
// discarded by the hardware model.
type Event struct {
	Op      Op
	Addr    uint32
	Val     uint32
	Ignored bool
}

func (e Event) String() string {
	switch e.Op {
	case OpWrite:
		s := fmt.Sprintf("write %#.8x <- %#.8x", e.Addr, e.Val)

		if e.Ignored {
			s += " (ignored)"
		}

		return s
	case OpBarrier, OpHalt:
		return e.Op.String()
	default:
		return fmt.Sprintf("%s %#.8x", e.Op, e.Val)
	}
}

// Machine represents a simulated nRF9160 in Secure state.
type Machine struct {
	sync.Mutex

	mem map[uint32]uint32

	// peripheral IDs whose security attribute is writable regardless of
	// the reported mapping
	writable map[int]bool

	// Trace holds all operations in program order.
	Trace []Event

	// Non-secure core registers
	MSPNS   uint32
	PSPNS   uint32
	Control uint32

	// Entered is set once the Non-secure World has been entered at Entry.
	Entered bool
	Entry   uint32

	// Halted is set once the core has been halted.
	Halted bool

	// ResetRequests counts keyed AIRCR.SYSRESETREQ writes. All accesses
	// are modeled as Secure, AIRCR.SYSRESETREQS gating of Non-secure
	// requests is not applied.
	ResetRequests int
}

var (
	_ hw.Bus  = (*Machine)(nil)
	_ hw.Core = (*Machine)(nil)
)

// New returns a machine with all registers and memory reading as zero.
func New() *Machine {
	return &Machine{
		mem:      make(map[uint32]uint32),
		writable: make(map[int]bool),
	}
}

// Peek returns the raw stored value at an address, without hardware side
// effects.
func (m *Machine) Peek(addr uint32) uint32 {
	m.Lock()
	defer m.Unlock()

	return m.mem[addr]
}

// Poke stores a raw value at an address, without hardware side effects or
// tracing.
func (m *Machine) Poke(addr uint32, val uint32) {
	m.Lock()
	defer m.Unlock()

	m.mem[addr] = val
}

// Load copies a buffer at the given address as little-endian words.
func (m *Machine) Load(addr uint32, buf []byte) {
	m.Lock()
	defer m.Unlock()

	for i := 0; i < len(buf); i += 4 {
		var word [4]byte
		copy(word[:], buf[i:])
		m.mem[addr+uint32(i)] = binary.LittleEndian.Uint32(word[:])
	}
}

// Read implements hw.Bus.
func (m *Machine) Read(addr uint32) uint32 {
	m.Lock()
	defer m.Unlock()

	val := m.mem[addr]

	if addr == armv8m.SCB_AIRCR {
		val = VECTKEYSTAT<<armv8m.AIRCR_VECTKEY | val&0xffff
	}

	return val
}

// VECTKEYSTAT is read back from AIRCR.VECTKEY.
const VECTKEYSTAT = armv8m.VECTKEYSTAT

// Write implements hw.Bus.
func (m *Machine) Write(addr uint32, val uint32) {
	m.Lock()
	defer m.Unlock()

	ev := Event{Op: OpWrite, Addr: addr, Val: val}

	switch {
	case addr == armv8m.SCB_AIRCR:
		ev.Ignored = !m.writeAIRCR(val)
	case isPeriphPerm(addr):
		ev.Ignored = !m.writePeriphPerm(addr, val)
	case isRegionPerm(addr):
		ev.Ignored = !m.writeRegionPerm(addr, val)
	default:
		m.mem[addr] = val
	}

	m.Trace = append(m.Trace, ev)
}

func (m *Machine) writeAIRCR(val uint32) bool {
	if val>>armv8m.AIRCR_VECTKEY != armv8m.VECTKEY {
		return false
	}

	if val&(1<<armv8m.AIRCR_SYSRESETREQ) != 0 {
		m.ResetRequests++
	}

	// VECTRESET, VECTCLRACTIVE and SYSRESETREQ are write-only
	m.mem[armv8m.SCB_AIRCR] = val & 0xfff8

	return true
}

func isPeriphPerm(addr uint32) bool {
	start := uint32(spu.SPU_BASE + spu.SPU_PERIPHID_PERM)
	return addr >= start && addr < start+spu.PERIPHID_COUNT*4
}

func isRegionPerm(addr uint32) bool {
	flash := uint32(spu.SPU_BASE + spu.SPU_FLASHREGION_PERM)
	ram := uint32(spu.SPU_BASE + spu.SPU_RAMREGION_PERM)

	return (addr >= flash && addr < flash+32*4) || (addr >= ram && addr < ram+32*4)
}

func (m *Machine) writePeriphPerm(addr uint32, val uint32) bool {
	cur := m.mem[addr]

	if cur&(1<<spu.PERIPH_LOCK) != 0 {
		return false
	}

	id := int(addr-(spu.SPU_BASE+spu.SPU_PERIPHID_PERM)) / 4
	p := spu.DecodePeripheral(id, cur)

	mask := uint32(1 << spu.PERIPH_LOCK)

	if p.Configurable() || m.writable[id] {
		mask |= 1<<spu.PERIPH_SECATTR | 1<<spu.PERIPH_DMASEC
	}

	m.mem[addr] = cur&^mask | val&mask

	return true
}

func (m *Machine) writeRegionPerm(addr uint32, val uint32) bool {
	if m.mem[addr]&(1<<spu.PERM_LOCK) != 0 {
		return false
	}

	m.mem[addr] = val & (1<<spu.PERM_LOCK | 1<<spu.PERM_SECATTR | 1<<spu.PERM_READ | 1<<spu.PERM_WRITE | 1<<spu.PERM_EXECUTE)

	return true
}

// Writes returns all values written to an address, in program order,
// including ignored ones.
func (m *Machine) Writes(addr uint32) (vals []uint32) {
	m.Lock()
	defer m.Unlock()

	for _, ev := range m.Trace {
		if ev.Op == OpWrite && ev.Addr == addr {
			vals = append(vals, ev.Val)
		}
	}

	return
}

// Index returns the position in the trace of the first event matching op
// and, for writes, addr, or -1 when not found.
func (m *Machine) Index(op Op, addr uint32) int {
	m.Lock()
	defer m.Unlock()

	for i, ev := range m.Trace {
		if ev.Op == op && (op != OpWrite || ev.Addr == addr) {
			return i
		}
	}

	return -1
}

// Snapshot returns a copy of all stored registers and memory.
func (m *Machine) Snapshot() map[uint32]uint32 {
	m.Lock()
	defer m.Unlock()

	s := make(map[uint32]uint32, len(m.mem))

	for addr, val := range m.mem {
		s[addr] = val
	}

	return s
}
