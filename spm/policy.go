// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spm

// ConfigurePolicy sets the core security policy once memory and peripherals
// have been attributed:
//   - SecureFault is enabled
//   - Secure exceptions are prioritized
//   - BusFault, HardFault and NMI banking is set
//   - Non-secure system reset requests are denied
//   - the SAU is disabled in favour of the SPU
//   - Non-secure FPU access is granted
//
// Barriers are issued before the FPU is granted, so that the new policy is
// in effect for all subsequent instructions.
func (spm *SPM) ConfigurePolicy() {
	spm.advance(PolicyConfigured, PeripheralsAssigned)

	spm.cpu.EnableSecureFault()

	spm.cpu.PrioritizeSecure()
	spm.cpu.BankFaults()
	spm.cpu.DenyNonSecureReset()

	spm.cpu.DisableSAU()

	spm.Core.Barrier()

	spm.cpu.EnableFPU()

	if spm.ICache {
		spm.nvmc.EnableICache()
	}

	spm.logf("SPM security policy configured")
}
