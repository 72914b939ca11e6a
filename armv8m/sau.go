// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package armv8m

// Security Attribution Unit registers
const (
	SAU_CTRL = 0xe000edd0

	SAU_CTRL_ENABLE = 0
	SAU_CTRL_ALLNS  = 1
)

// DisableSAU disables the SAU and then sets SAU_CTRL.ALLNS, so that the
// implementation defined attribution unit (the SPU on nRF91) alone decides
// the security attribute of each address.
func (cpu *CPU) DisableSAU() {
	ctrl := cpu.reg(SAU_CTRL)

	ctrl.Write(0)
	ctrl.Write(1 << SAU_CTRL_ALLNS)
}

// Secure Fault status registers
const (
	SAU_SFSR = 0xe000ede4
	SAU_SFAR = 0xe000ede8

	// attribution unit violation
	SFSR_AUVIOL = 3
	// SFAR holds a valid fault address
	SFSR_SFARVALID = 6
)

// SecureFaultStatus returns the Secure Fault Status Register and, when valid,
// the faulting address.
func (cpu *CPU) SecureFaultStatus() (sfsr uint32, sfar uint32, valid bool) {
	sfsr = cpu.reg(SAU_SFSR).Read()

	if valid = sfsr&(1<<SFSR_SFARVALID) != 0; valid {
		sfar = cpu.reg(SAU_SFAR).Read()
	}

	return
}
