// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/nrf-spm/armv8m"
	"github.com/usbarmory/nrf-spm/spu"
)

func TestAIRCRKey(t *testing.T) {
	m := New()

	m.Write(armv8m.SCB_AIRCR, 1<<armv8m.AIRCR_PRIS)

	if got := m.Peek(armv8m.SCB_AIRCR); got != 0 {
		t.Errorf("keyless write stored %#x", got)
	}

	m.Write(armv8m.SCB_AIRCR, armv8m.VECTKEY<<armv8m.AIRCR_VECTKEY|1<<armv8m.AIRCR_PRIS|1<<armv8m.AIRCR_SYSRESETREQ)

	if got, want := m.Read(armv8m.SCB_AIRCR), uint32(armv8m.VECTKEYSTAT<<armv8m.AIRCR_VECTKEY|1<<armv8m.AIRCR_PRIS); got != want {
		t.Errorf("AIRCR: got %#x, want %#x", got, want)
	}

	if m.ResetRequests != 1 {
		t.Errorf("reset requests: got %d, want 1", m.ResetRequests)
	}

	if !m.Trace[0].Ignored || m.Trace[1].Ignored {
		t.Errorf("unexpected trace %v", m.Trace)
	}

	// requests are counted regardless of SYSRESETREQS
	m.Write(armv8m.SCB_AIRCR, armv8m.VECTKEY<<armv8m.AIRCR_VECTKEY|1<<armv8m.AIRCR_SYSRESETREQS)
	m.Write(armv8m.SCB_AIRCR, armv8m.VECTKEY<<armv8m.AIRCR_VECTKEY|1<<armv8m.AIRCR_SYSRESETREQS|1<<armv8m.AIRCR_SYSRESETREQ)

	if m.ResetRequests != 2 {
		t.Errorf("reset requests: got %d, want 2", m.ResetRequests)
	}
}

func TestPeripheralWritability(t *testing.T) {
	m := NewNRF9160()
	s := spu.New(m)

	for _, tc := range []struct {
		id     int
		secure bool
	}{
		{3, true},            // fixed Secure
		{8, false},           // user selectable
		{23, false},          // split
		{spu.GPIOTE1, false}, // erratum
	} {
		s.SetPeripheralNonSecure(tc.id, false)

		if got := s.Peripheral(tc.id).Secure; got != tc.secure {
			t.Errorf("%s: secure %v, want %v", spu.Name(tc.id), got, tc.secure)
		}
	}

	// DMASEC follows SECATTR on separate attribute peripherals
	if s.Peripheral(8).DMASecure {
		t.Errorf("SERIAL0 DMA still secure")
	}
}

func TestLock(t *testing.T) {
	m := NewNRF9160()
	s := spu.New(m)

	s.SetPeripheralNonSecure(8, true)
	before := m.Peek(spu.SPU_BASE + spu.SPU_PERIPHID_PERM + 8*4)

	m.Write(spu.SPU_BASE+spu.SPU_PERIPHID_PERM+8*4, before|1<<spu.PERIPH_SECATTR)

	if got := m.Peek(spu.SPU_BASE + spu.SPU_PERIPHID_PERM + 8*4); got != before {
		t.Errorf("locked PERM changed from %#x to %#x", before, got)
	}

	addr := uint32(spu.SPU_BASE + spu.SPU_FLASHREGION_PERM)
	m.Write(addr, 1<<spu.PERM_LOCK|1<<spu.PERM_READ)
	m.Write(addr, 0)

	if got := m.Peek(addr); got != 1<<spu.PERM_LOCK|1<<spu.PERM_READ {
		t.Errorf("locked region PERM changed to %#x", got)
	}
}

func TestResetState(t *testing.T) {
	m := NewNRF9160()
	s := spu.New(m)

	p := s.Peripheral(spu.GPIOTE1)

	if !p.Present || p.Mapping != spu.MappingNonSecure || !p.Secure {
		t.Errorf("GPIOTE1 reset state: %v", p)
	}

	if p.Configurable() {
		t.Errorf("GPIOTE1 reported configurable")
	}

	if s.Peripheral(0).Present {
		t.Errorf("reserved slot reported present")
	}

	if got := m.Peek(spu.SPU_BASE + spu.SPU_DPPI_PERM); got != 0xffffffff {
		t.Errorf("DPPI PERM: %#x", got)
	}
}

func TestRun(t *testing.T) {
	m := New()

	if err := m.Run(func() { m.JumpNonSecure(0x10004) }); err != nil {
		t.Fatalf("jump: %v", err)
	}

	if !m.Entered || m.Entry != 0x10004 {
		t.Errorf("entry: %v %#x", m.Entered, m.Entry)
	}

	if err := m.Run(func() {}); !errors.Is(err, ErrReturned) {
		t.Errorf("return: got %v, want %v", err, ErrReturned)
	}

	if err := m.Run(func() { panic("boom") }); err == nil {
		t.Errorf("panic not reported")
	}

	if err := m.Run(m.Halt); err != nil || !m.Halted {
		t.Errorf("halt: %v %v", err, m.Halted)
	}
}

func TestTrace(t *testing.T) {
	m := New()

	m.Write(0x1000, 1)
	m.Barrier()
	m.SetMSPNS(0x2003fff0)
	m.SetPSPNS(0)
	m.SetControlNS(0)

	want := []Event{
		{Op: OpWrite, Addr: 0x1000, Val: 1},
		{Op: OpBarrier},
		{Op: OpMSPNS, Val: 0x2003fff0},
		{Op: OpPSPNS},
		{Op: OpControlNS},
	}

	if diff := cmp.Diff(want, m.Trace); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}

	if got := m.Index(OpMSPNS, 0); got != 2 {
		t.Errorf("Index: got %d, want 2", got)
	}
}

func TestLoad(t *testing.T) {
	m := New()
	m.Load(0x10000, []byte{0xf0, 0xff, 0x03, 0x20, 0x04, 0x00, 0x01})

	if got := m.Read(0x10000); got != 0x2003fff0 {
		t.Errorf("word 0: %#x", got)
	}

	if got := m.Read(0x10004); got != 0x00010004 {
		t.Errorf("word 1: %#x", got)
	}
}
