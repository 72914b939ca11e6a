// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spm

import (
	"errors"
	"fmt"

	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/spu"
)

// NSC represents a Non-secure Callable area, placed at the end of a Secure
// region, which hosts the Secure Gateway veneers callable from the
// Non-secure World.
type NSC struct {
	Kind   mem.Kind
	Region int
	Size   uint32
}

// Start returns the area physical address.
func (nsc NSC) Start() uint32 {
	return nsc.Kind.Start() + uint32(nsc.Region+1)*nsc.Kind.RegionSize() - nsc.Size
}

func (nsc NSC) String() string {
	return fmt.Sprintf("%s[%.2d] %#.8x-%#.8x", nsc.Kind, nsc.Region, nsc.Start(), nsc.Start()+nsc.Size)
}

// Validate returns an error if the area cannot be configured within the
// given layout.
func (nsc NSC) Validate(l mem.Layout) (err error) {
	if nsc.Kind != mem.Flash && nsc.Kind != mem.RAM {
		return fmt.Errorf("invalid NSC memory %s", nsc.Kind)
	}

	if nsc.Region < 0 || nsc.Region >= nsc.Kind.Regions() {
		return fmt.Errorf("invalid NSC %s region %d", nsc.Kind, nsc.Region)
	}

	if _, err = spu.NSCSizeCode(nsc.Size); err != nil {
		return
	}

	if !l.Secure(nsc.Start()) {
		return errors.New("NSC area must be within Secure memory")
	}

	return
}

// ConfigureNSC configures the Non-secure Callable area, it must be invoked
// after memory partitioning and before the peripheral assignment. An invalid
// area causes a panic before any register write.
func (spm *SPM) ConfigureNSC(nsc NSC) {
	spm.require("configure NSC", MemoryPartitioned)

	if err := nsc.Validate(spm.Layout); err != nil {
		panic(fmt.Sprintf("SPM %v", err))
	}

	if err := spm.spu.SetNonSecureCallable(nsc.Kind, 0, nsc.Region, nsc.Size, spm.Lock); err != nil {
		panic(fmt.Sprintf("SPM %v", err))
	}

	spm.logf("SPM non-secure callable %s", nsc)
}
