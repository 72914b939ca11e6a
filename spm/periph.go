// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spm

import (
	"fmt"

	"github.com/usbarmory/nrf-spm/spu"
)

// Peripherals which misreport their configurability at reset, their
// attribute is always re-assigned.
var overrides = map[int]bool{
	spu.GPIOTE1: true,
}

// Assignment represents the audit record of one peripheral table entry.
type Assignment struct {
	ID   int
	Name string

	// PERM register value before and after assignment
	Before uint32
	After  uint32

	// NonSecure is set when the peripheral and its interrupt were
	// assigned to the Non-secure World.
	NonSecure bool
	// Override is set when the assignment was forced by the erratum
	// table.
	Override bool
}

func (a Assignment) String() string {
	s := fmt.Sprintf("periph %.2d %-12s %#.8x -> %#.8x", a.ID, a.Name, a.Before, a.After)

	if a.Override {
		s += " (override)"
	}

	return s
}

// Assign returns whether a peripheral, given its reset readback, is to be
// assigned to the Non-secure World.
func Assign(p spu.Peripheral) (assign bool, override bool) {
	if p.Configurable() {
		return true, false
	}

	if overrides[p.ID] {
		return true, true
	}

	return
}

// AssignPeripherals walks the SPU peripheral table from the first
// configurable slot and assigns every configurable peripheral, along with
// its DMA accesses and its interrupt line, to the Non-secure World. The
// peripheral ID matches its IRQ number.
//
// The pass only sets attributes and it is idempotent, it can be repeated
// until the policy is configured. One audit record per table entry is logged
// and returned.
func (spm *SPM) AssignPeripherals() (audit []Assignment) {
	spm.require("assign peripherals", MemoryPartitioned, PeripheralsAssigned)

	for id := spu.FIRST_CONFIGURABLE; id < spu.PERIPHID_COUNT; id++ {
		p := spm.spu.Peripheral(id)

		a := Assignment{
			ID:     id,
			Name:   spu.Name(id),
			Before: p.Perm,
		}

		a.NonSecure, a.Override = Assign(p)

		if a.NonSecure {
			spm.spu.SetPeripheralNonSecure(id, spm.Lock)
			spm.cpu.SetInterruptNonSecure(id)
		}

		a.After = spm.spu.Peripheral(id).Perm
		audit = append(audit, a)

		if l, ok := spm.Log.(AuditLogger); ok {
			l.Audit(a)
		} else {
			spm.logf("SPM %s", a)
		}
	}

	if spm.NonSecureDPPI {
		spm.spu.SetDPPINonSecure()
	}

	if spm.NonSecureGPIO {
		spm.spu.SetGPIONonSecure()
	}

	spm.Audit = audit
	spm.stage = PeripheralsAssigned

	return
}

// Peripherals returns the current state of all peripheral table entries, as
// read back from hardware.
func (spm *SPM) Peripherals() (table []spu.Peripheral) {
	for id := 0; id < spu.PERIPHID_COUNT; id++ {
		table = append(table, spm.spu.Peripheral(id))
	}

	return
}

// InterruptNonSecure returns whether an interrupt targets the Non-secure
// World.
func (spm *SPM) InterruptNonSecure(irq int) bool {
	return spm.cpu.InterruptNonSecure(irq)
}
