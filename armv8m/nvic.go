// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package armv8m

import (
	"fmt"
)

// NVIC Interrupt Target Non-secure registers, bit n of ITNS[m] targets IRQ
// 32*m + n to the Non-secure World.
const (
	NVIC_ITNS       = 0xe000e380
	NVIC_ITNS_COUNT = 16
	NVIC_ITNS_WIDTH = 32
)

// SetInterruptNonSecure targets an external interrupt to the Non-secure
// World, the ITNS word is updated with a read-modify-write OR so that earlier
// assignments are preserved.
func (cpu *CPU) SetInterruptNonSecure(irq int) {
	if irq < 0 || irq >= NVIC_ITNS_COUNT*NVIC_ITNS_WIDTH {
		panic(fmt.Sprintf("invalid IRQ %d", irq))
	}

	n := uint32(irq / NVIC_ITNS_WIDTH)
	m := irq % NVIC_ITNS_WIDTH

	cpu.reg(NVIC_ITNS + n*4).Set(m)
}

// InterruptNonSecure returns whether an external interrupt targets the
// Non-secure World.
func (cpu *CPU) InterruptNonSecure(irq int) bool {
	if irq < 0 || irq >= NVIC_ITNS_COUNT*NVIC_ITNS_WIDTH {
		return false
	}

	n := uint32(irq / NVIC_ITNS_WIDTH)
	m := irq % NVIC_ITNS_WIDTH

	return cpu.reg(NVIC_ITNS + n*4).IsSet(m)
}
