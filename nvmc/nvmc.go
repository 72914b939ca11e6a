// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package nvmc implements a driver for the nRF9160 Non-Volatile Memory
// Controller instruction cache configuration.
package nvmc

import (
	"github.com/usbarmory/nrf-spm/hw"
)

// NVMC registers (Secure instance)
const (
	NVMC_BASE = 0x50039000

	NVMC_ICACHECNF = 0x540
	CACHEEN        = 0
)

// NVMC represents the Non-Volatile Memory Controller instance.
type NVMC struct {
	Base uint32
	Bus  hw.Bus
}

// New returns the Secure NVMC instance.
func New(bus hw.Bus) *NVMC {
	return &NVMC{
		Base: NVMC_BASE,
		Bus:  bus,
	}
}

func (nvmc *NVMC) icachecnf() hw.Reg {
	return hw.Reg{Bus: nvmc.Bus, Addr: nvmc.Base + NVMC_ICACHECNF}
}

// EnableICache enables the flash instruction cache.
func (nvmc *NVMC) EnableICache() {
	nvmc.icachecnf().Set(CACHEEN)
}

// ICache returns whether the flash instruction cache is enabled.
func (nvmc *NVMC) ICache() bool {
	return nvmc.icachecnf().IsSet(CACHEEN)
}
