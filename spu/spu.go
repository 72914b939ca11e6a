// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package spu implements a driver for the Nordic Semiconductor nRF9160 System
// Protection Unit (SPU).
//
// The SPU attributes flash regions, RAM regions and peripheral slots to either
// the Secure or Non-secure World, it is the only attribution unit used as the
// ARMv8-M SAU is disabled in favour of it.
package spu

import (
	"fmt"

	"github.com/usbarmory/nrf-spm/hw"
	"github.com/usbarmory/nrf-spm/mem"
)

// SPU registers
const (
	SPU_BASE = 0x50003000

	SPU_DPPI_PERM     = 0x480
	SPU_GPIOPORT_PERM = 0x4c0

	SPU_FLASHNSC_REGION = 0x500
	SPU_FLASHNSC_SIZE   = 0x504
	SPU_RAMNSC_REGION   = 0x540
	SPU_RAMNSC_SIZE     = 0x544
	NSC_STRIDE          = 8
	NSC_COUNT           = 2
	NSC_REGION          = 0
	NSC_LOCK            = 8

	SPU_FLASHREGION_PERM = 0x600
	SPU_RAMREGION_PERM   = 0x700
	SPU_PERIPHID_PERM    = 0x800
)

// FLASHREGION[n].PERM and RAMREGION[n].PERM fields
const (
	PERM_EXECUTE = 0
	PERM_WRITE   = 1
	PERM_READ    = 2
	PERM_SECATTR = 4
	PERM_LOCK    = 8
)

// PERIPHID[n].PERM fields
const (
	PERIPH_SECUREMAPPING = 0
	PERIPH_DMA           = 2
	PERIPH_SECATTR       = 4
	PERIPH_DMASEC        = 5
	PERIPH_LOCK          = 8
	PERIPH_PRESENT       = 31
)

// Peripheral table bounds, hardware reserves the first slots.
const (
	PERIPHID_COUNT     = 67
	FIRST_CONFIGURABLE = 3
)

// GPIOTE1 reports a fixed Non-secure mapping in its PERM register although
// its attribute is user selectable.
const GPIOTE1 = 49

// SPU represents the System Protection Unit instance.
type SPU struct {
	// Base register
	Base uint32
	// Bus gives access to the SPU registers
	Bus hw.Bus
}

// New returns the SPU instance at its default base address.
func New(bus hw.Bus) *SPU {
	return &SPU{
		Base: SPU_BASE,
		Bus:  bus,
	}
}

func (spu *SPU) reg(off uint32) hw.Reg {
	return hw.Reg{Bus: spu.Bus, Addr: spu.Base + off}
}

func regionPerm(k mem.Kind) uint32 {
	if k == mem.RAM {
		return SPU_RAMREGION_PERM
	}

	return SPU_FLASHREGION_PERM
}

func checkRegion(k mem.Kind, n int) {
	if n < 0 || n >= k.Regions() {
		panic(fmt.Sprintf("invalid %s region index %d", k, n))
	}
}

// RegionPerm returns the raw PERM register of a flash or RAM region.
func (spu *SPU) RegionPerm(k mem.Kind, n int) uint32 {
	checkRegion(k, n)
	return spu.reg(regionPerm(k) + uint32(n)*4).Read()
}

// SetRegion writes the PERM register of a flash or RAM region, the register
// is fully overwritten with the region permissions and security attribute.
func (spu *SPU) SetRegion(r mem.Region, lock bool) {
	checkRegion(r.Kind, r.Index)

	var perm uint32

	if r.Read {
		perm |= 1 << PERM_READ
	}

	if r.Write {
		perm |= 1 << PERM_WRITE
	}

	if r.Execute {
		perm |= 1 << PERM_EXECUTE
	}

	if r.Secure {
		perm |= 1 << PERM_SECATTR
	}

	if lock {
		perm |= 1 << PERM_LOCK
	}

	spu.reg(regionPerm(r.Kind) + uint32(r.Index)*4).Write(perm)
}

// Region returns the current configuration of a flash or RAM region.
func (spu *SPU) Region(k mem.Kind, n int) mem.Region {
	perm := spu.RegionPerm(k, n)

	return mem.Region{
		Kind:    k,
		Index:   n,
		Offset:  uint32(n) * k.RegionSize(),
		Size:    k.RegionSize(),
		Secure:  perm&(1<<PERM_SECATTR) != 0,
		Read:    perm&(1<<PERM_READ) != 0,
		Write:   perm&(1<<PERM_WRITE) != 0,
		Execute: perm&(1<<PERM_EXECUTE) != 0,
	}
}

// SetDPPINonSecure attributes all DPPI channels to the Non-secure World.
func (spu *SPU) SetDPPINonSecure() {
	spu.reg(SPU_DPPI_PERM).Write(0)
}

// SetGPIONonSecure attributes all GPIO port pins to the Non-secure World.
func (spu *SPU) SetGPIONonSecure() {
	spu.reg(SPU_GPIOPORT_PERM).Write(0)
}
