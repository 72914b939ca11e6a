// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package armv8m implements helpers for ARMv8-M Mainline core peripherals
// relevant to the Security Extension (TrustZone-M).
package armv8m

import (
	"github.com/usbarmory/tamago/bits"

	"github.com/usbarmory/nrf-spm/hw"
)

// The Secure view of the System Control Space aliases its Non-secure
// counterpart at a fixed offset.
const NS_ALIAS_OFFSET = 0x00020000

// System Control Block registers
const (
	SCB_BASE = 0xe000ed00

	SCB_VTOR  = 0xe000ed08
	SCB_AIRCR = 0xe000ed0c
	SCB_SHCSR = 0xe000ed24
	SCB_CPACR = 0xe000ed88
	SCB_NSACR = 0xe000ed8c

	SCB_VTOR_NS  = SCB_VTOR + NS_ALIAS_OFFSET
	SCB_CPACR_NS = SCB_CPACR + NS_ALIAS_OFFSET
)

// AIRCR fields
const (
	AIRCR_VECTKEY      = 16
	AIRCR_PRIS         = 14
	AIRCR_BFHFNMINS    = 13
	AIRCR_SYSRESETREQS = 3
	AIRCR_SYSRESETREQ  = 2

	// written to VECTKEY to permit a write
	VECTKEY = 0x05fa
	// read back from VECTKEY
	VECTKEYSTAT = 0xfa05
)

// SHCSR fields
const (
	SHCSR_SECUREFAULTENA = 19
)

// CPACR / NSACR fields
const (
	CPACR_CP10 = 20
	CPACR_CP11 = 22
	CP_FULL    = 0b11

	NSACR_CP10 = 10
	NSACR_CP11 = 11
)

// CPU represents the core peripherals of the Secure state.
type CPU struct {
	// Bus gives access to the System Control Space
	Bus hw.Bus
}

func (cpu *CPU) reg(addr uint32) hw.Reg {
	return hw.Reg{Bus: cpu.Bus, Addr: addr}
}

// modifyAIRCR sets, or clears, the bits of mask in AIRCR. Every AIRCR write
// is ignored unless it carries VECTKEY, the key field is therefore discarded
// from the read value and re-supplied on each write.
func (cpu *CPU) modifyAIRCR(mask uint32, set bool) {
	cpu.reg(SCB_AIRCR).Modify(func(aircr *uint32) {
		bits.SetN(aircr, AIRCR_VECTKEY, 0xffff, 0)

		if set {
			*aircr |= mask
		} else {
			*aircr &^= mask
		}

		bits.SetN(aircr, AIRCR_VECTKEY, 0xffff, VECTKEY)
	})
}

// PrioritizeSecure sets AIRCR.PRIS, Secure exceptions take precedence over
// Non-secure ones of equal configured priority.
func (cpu *CPU) PrioritizeSecure() {
	cpu.modifyAIRCR(1<<AIRCR_PRIS, true)
}

// BankFaults sets AIRCR.BFHFNMINS, changing BusFault, HardFault and NMI
// banking.
func (cpu *CPU) BankFaults() {
	cpu.modifyAIRCR(1<<AIRCR_BFHFNMINS, true)
}

// DenyNonSecureReset clears AIRCR.SYSRESETREQS, SYSRESETREQ writes from the
// Non-secure World are ignored afterwards.
func (cpu *CPU) DenyNonSecureReset() {
	cpu.modifyAIRCR(1<<AIRCR_SYSRESETREQS, false)
}

// EnableSecureFault enables the SecureFault exception.
func (cpu *CPU) EnableSecureFault() {
	cpu.reg(SCB_SHCSR).Set(SHCSR_SECUREFAULTENA)
}

// SetNonSecureVTOR sets the Non-secure vector table offset through the
// Secure alias of the Non-secure SCB.
func (cpu *CPU) SetNonSecureVTOR(addr uint32) {
	cpu.reg(SCB_VTOR_NS).Write(addr)
}

// EnableFPU grants full CP10 and CP11 (FPU) access to both security states.
func (cpu *CPU) EnableFPU() {
	// grant NonSecure access to CP10 and CP11
	cpu.reg(SCB_NSACR).Or(1<<NSACR_CP11 | 1<<NSACR_CP10)

	for _, addr := range []uint32{SCB_CPACR, SCB_CPACR_NS} {
		cpacr := cpu.reg(addr)
		cpacr.SetN(CPACR_CP10, CP_FULL, CP_FULL)
		cpacr.SetN(CPACR_CP11, CP_FULL, CP_FULL)
	}
}
