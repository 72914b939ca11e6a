// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spm

import (
	"fmt"

	"github.com/usbarmory/nrf-spm/armv8m"
	"github.com/usbarmory/nrf-spm/hw"
)

// Header represents the initial state words at the beginning of the
// Non-secure image vector table.
type Header struct {
	StackPointer uint32
	ResetHandler uint32
}

func (h Header) String() string {
	return fmt.Sprintf("sp:%#.8x reset:%#.8x", h.StackPointer, h.ResetHandler)
}

// ReadHeader reads the Non-secure image header at the given vector table
// address.
func ReadHeader(bus hw.Bus, base uint32) Header {
	return Header{
		StackPointer: bus.Read(base),
		ResetHandler: bus.Read(base + 4),
	}
}

// EnterNonSecure hands over control to the Non-secure image whose vector
// table is located at base. The Non-secure VTOR is set to base, MSP_NS to
// the image initial stack pointer, PSP_NS is cleared and Non-secure thread
// mode is set privileged on the main stack. After barriers the image reset
// handler is invoked with the Non-secure calling convention.
//
// On hardware the function never returns, if the Non-secure call does
// return the core is halted.
func (spm *SPM) EnterNonSecure(base uint32) {
	spm.advance(NonSecureEntered, PolicyConfigured)

	h := ReadHeader(spm.Bus, base)

	spm.logf("SPM entering Non-secure World at %#.8x (%s)", base, h)

	spm.cpu.SetNonSecureVTOR(base)

	spm.Core.SetMSPNS(h.StackPointer)
	spm.Core.SetPSPNS(0)
	spm.Core.SetControlNS(armv8m.PrivilegedMSP(spm.Core.ControlNS()))

	spm.Core.Barrier()

	// never returns
	spm.Core.JumpNonSecure(h.ResetHandler)

	Fault(spm.Core, spm.Log, "Non-secure World returned to %#.8x", base)
}
