// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/spu"
)

type periph struct {
	mapping spu.SecureMapping
	dma     spu.DMA
}

// nRF9160 PERIPHID[n].PERM reset readback, only present instances are
// listed.
var nrf9160 = map[int]periph{
	3:  {spu.MappingSecure, spu.NoDMA},                     // SPU
	4:  {spu.MappingUserSelectable, spu.NoDMA},             // REGULATORS
	5:  {spu.MappingSplit, spu.NoDMA},                      // CLOCK_POWER
	8:  {spu.MappingUserSelectable, spu.SeparateAttribute}, // SERIAL0
	9:  {spu.MappingUserSelectable, spu.SeparateAttribute}, // SERIAL1
	10: {spu.MappingUserSelectable, spu.SeparateAttribute}, // SERIAL2
	11: {spu.MappingUserSelectable, spu.SeparateAttribute}, // SERIAL3
	13: {spu.MappingSecure, spu.NoDMA},                     // GPIOTE0
	14: {spu.MappingUserSelectable, spu.NoSeparateAttribute},
	15: {spu.MappingUserSelectable, spu.NoDMA},
	16: {spu.MappingUserSelectable, spu.NoDMA},
	17: {spu.MappingUserSelectable, spu.NoDMA},
	20: {spu.MappingUserSelectable, spu.NoDMA},
	21: {spu.MappingUserSelectable, spu.NoDMA},
	23: {spu.MappingSplit, spu.NoDMA}, // DPPIC
	24: {spu.MappingUserSelectable, spu.NoDMA},
	27: {spu.MappingUserSelectable, spu.NoDMA},
	28: {spu.MappingUserSelectable, spu.NoDMA},
	29: {spu.MappingUserSelectable, spu.NoDMA},
	30: {spu.MappingUserSelectable, spu.NoDMA},
	31: {spu.MappingUserSelectable, spu.NoDMA},
	32: {spu.MappingUserSelectable, spu.NoDMA},
	33: {spu.MappingUserSelectable, spu.NoSeparateAttribute},
	34: {spu.MappingUserSelectable, spu.NoSeparateAttribute},
	35: {spu.MappingUserSelectable, spu.NoSeparateAttribute},
	36: {spu.MappingUserSelectable, spu.NoSeparateAttribute},
	38: {spu.MappingUserSelectable, spu.NoSeparateAttribute},
	40: {spu.MappingUserSelectable, spu.NoSeparateAttribute},
	42: {spu.MappingUserSelectable, spu.NoDMA},
	44: {spu.MappingUserSelectable, spu.NoDMA},
	// GPIOTE1 misreports a fixed Non-secure mapping
	49: {spu.MappingNonSecure, spu.NoDMA},
	57: {spu.MappingSplit, spu.NoDMA}, // NVMC_KMU
	58: {spu.MappingUserSelectable, spu.NoDMA},
	66: {spu.MappingSplit, spu.NoDMA}, // P0
}

// ResetPeriphPerm returns the reset value of PERIPHID[id].PERM for the
// simulated device, all present peripherals start Secure.
func ResetPeriphPerm(id int) uint32 {
	p, ok := nrf9160[id]

	if !ok {
		return 0
	}

	perm := uint32(1)<<spu.PERIPH_PRESENT |
		uint32(p.mapping)<<spu.PERIPH_SECUREMAPPING |
		uint32(p.dma)<<spu.PERIPH_DMA |
		1<<spu.PERIPH_SECATTR

	if p.dma == spu.SeparateAttribute {
		perm |= 1 << spu.PERIPH_DMASEC
	}

	return perm
}

// NewNRF9160 returns a machine in the nRF9160 Secure reset state: all
// regions Secure with full permissions, all present peripherals Secure,
// all DPPI channels and GPIO pins Secure, the SAU enabled with no regions,
// all interrupts targeting the Secure World.
func NewNRF9160() *Machine {
	m := New()

	for _, k := range []mem.Kind{mem.Flash, mem.RAM} {
		off := uint32(spu.SPU_FLASHREGION_PERM)

		if k == mem.RAM {
			off = spu.SPU_RAMREGION_PERM
		}

		for n := 0; n < k.Regions(); n++ {
			m.mem[spu.SPU_BASE+off+uint32(n)*4] = 1<<spu.PERM_SECATTR | 1<<spu.PERM_READ | 1<<spu.PERM_WRITE | 1<<spu.PERM_EXECUTE
		}
	}

	for id := 0; id < spu.PERIPHID_COUNT; id++ {
		if perm := ResetPeriphPerm(id); perm != 0 {
			m.mem[spu.SPU_BASE+spu.SPU_PERIPHID_PERM+uint32(id)*4] = perm
		}
	}

	// the attribute of the erratum instance is writable despite its
	// reported mapping
	m.writable[spu.GPIOTE1] = true

	m.mem[spu.SPU_BASE+spu.SPU_DPPI_PERM] = 0xffffffff
	m.mem[spu.SPU_BASE+spu.SPU_GPIOPORT_PERM] = 0xffffffff

	return m
}
