// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tinygo && cortexm

package hw

/*
#cgo CFLAGS: -mcmse

#include <stdint.h>
#include <arm_cmse.h>

typedef void __attribute__((cmse_nonsecure_call)) (*ns_entry_t)(void);

// The compiler clears Secure register state before branching with BLXNS.
static void ns_call(uint32_t entry) {
	ns_entry_t fn = (ns_entry_t)(uintptr_t)entry;
	fn = cmse_nsfptr_create(fn);
	fn();
}
*/
import "C"

import (
	"device/arm"
)

// CortexM implements Core on an ARMv8-M Mainline core running in Secure
// state.
type CortexM struct{}

// Barrier issues DSB and ISB (full system).
func (CortexM) Barrier() {
	arm.Asm("dsb 0xf")
	arm.Asm("isb 0xf")
}

// SetMSPNS writes MSP_NS, only meaningful before the Non-secure World has
// been entered.
func (CortexM) SetMSPNS(sp uint32) {
	arm.AsmFull("msr msp_ns, {sp}", map[string]interface{}{
		"sp": sp,
	})
}

// SetPSPNS writes PSP_NS, only meaningful before the Non-secure World has
// been entered.
func (CortexM) SetPSPNS(sp uint32) {
	arm.AsmFull("msr psp_ns, {sp}", map[string]interface{}{
		"sp": sp,
	})
}

// ControlNS reads CONTROL_NS.
func (CortexM) ControlNS() uint32 {
	return uint32(arm.AsmFull("mrs {}, control_ns", nil))
}

// SetControlNS writes CONTROL_NS.
func (CortexM) SetControlNS(val uint32) {
	arm.AsmFull("msr control_ns, {val}", map[string]interface{}{
		"val": val,
	})
}

// JumpNonSecure performs a cmse_nonsecure_call to entry.
func (CortexM) JumpNonSecure(entry uint32) {
	C.ns_call(C.uint32_t(entry))
}

// Halt masks interrupts and escalates to HardFault with an undefined
// instruction, leaving the core in a state inspectable by a debugger.
func (CortexM) Halt() {
	arm.DisableInterrupts()
	arm.Asm("udf #0")

	for {
		arm.Asm("wfi")
	}
}
