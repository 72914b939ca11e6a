// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spu

import (
	"fmt"

	"github.com/usbarmory/tamago/bits"
)

// SecureMapping represents the PERIPHID[n].PERM.SECUREMAPPING field.
type SecureMapping uint32

// SECUREMAPPING values
const (
	// fixed Non-secure
	MappingNonSecure SecureMapping = iota
	// fixed Secure
	MappingSecure
	MappingUserSelectable
	MappingSplit
)

func (m SecureMapping) String() string {
	switch m {
	case MappingNonSecure:
		return "nonsecure"
	case MappingSecure:
		return "secure"
	case MappingUserSelectable:
		return "user-selectable"
	case MappingSplit:
		return "split"
	default:
		return fmt.Sprintf("mapping(%d)", uint32(m))
	}
}

// Fixed returns whether the peripheral security attribute cannot be changed.
func (m SecureMapping) Fixed() bool {
	return m == MappingNonSecure || m == MappingSecure
}

// DMA represents the PERIPHID[n].PERM.DMA field.
type DMA uint32

// DMA values
const (
	NoDMA DMA = iota
	NoSeparateAttribute
	SeparateAttribute
)

// Peripheral represents one decoded PERIPHID[n].PERM entry.
type Peripheral struct {
	ID   int
	Perm uint32

	Present   bool
	Mapping   SecureMapping
	DMA       DMA
	Secure    bool
	DMASecure bool
	Locked    bool
}

// DecodePeripheral decodes a raw PERIPHID[n].PERM value.
func DecodePeripheral(id int, perm uint32) Peripheral {
	return Peripheral{
		ID:        id,
		Perm:      perm,
		Present:   bits.GetN(&perm, PERIPH_PRESENT, 1) == 1,
		Mapping:   SecureMapping(bits.GetN(&perm, PERIPH_SECUREMAPPING, 0b11)),
		DMA:       DMA(bits.GetN(&perm, PERIPH_DMA, 0b11)),
		Secure:    bits.GetN(&perm, PERIPH_SECATTR, 1) == 1,
		DMASecure: bits.GetN(&perm, PERIPH_DMASEC, 1) == 1,
		Locked:    bits.GetN(&perm, PERIPH_LOCK, 1) == 1,
	}
}

// Configurable returns whether the peripheral is present and its security
// attribute can be selected by software, as reported by hardware.
func (p Peripheral) Configurable() bool {
	return p.Present && (p.Mapping == MappingSplit || p.Mapping == MappingUserSelectable)
}

func (p Peripheral) String() string {
	if !p.Present {
		return fmt.Sprintf("PERIPHID%.2d: absent", p.ID)
	}

	attr := "nonsecure"

	if p.Secure {
		attr = "secure"
	}

	return fmt.Sprintf("PERIPHID%.2d: %s mapping:%s dmasec:%v lock:%v (%#.8x)", p.ID, attr, p.Mapping, p.DMASecure, p.Locked, p.Perm)
}

func checkPeripheral(id int) {
	if id < 0 || id >= PERIPHID_COUNT {
		panic(fmt.Sprintf("invalid peripheral id %d", id))
	}
}

func periphPerm(id int) uint32 {
	return SPU_PERIPHID_PERM + uint32(id)*4
}

// Peripheral returns the decoded PERM register of a peripheral slot.
func (spu *SPU) Peripheral(id int) Peripheral {
	checkPeripheral(id)
	return DecodePeripheral(id, spu.reg(periphPerm(id)).Read())
}

// SetPeripheralNonSecure attributes a peripheral, and its DMA accesses, to
// the Non-secure World. Both attributes are cleared in a single
// read-modify-write cycle, preserving all other fields.
func (spu *SPU) SetPeripheralNonSecure(id int, lock bool) {
	checkPeripheral(id)

	spu.reg(periphPerm(id)).Modify(func(perm *uint32) {
		bits.Clear(perm, PERIPH_SECATTR)
		bits.Clear(perm, PERIPH_DMASEC)

		if lock {
			bits.Set(perm, PERIPH_LOCK)
		}
	})
}
