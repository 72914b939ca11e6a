// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spm

import (
	"fmt"

	"github.com/usbarmory/nrf-spm/mem"
)

// Partition attributes every flash and RAM region, regions below the layout
// boundaries are Secure and all others Non-secure, all regions retain read,
// write and execute permissions.
//
// The layout is validated before any register write, an invalid layout
// causes a panic.
func (spm *SPM) Partition(l mem.Layout) {
	if err := l.Validate(); err != nil {
		panic(fmt.Sprintf("SPM invalid layout, %v", err))
	}

	spm.advance(MemoryPartitioned, Reset)
	spm.Layout = l

	for _, k := range []mem.Kind{mem.Flash, mem.RAM} {
		for _, r := range l.Regions(k) {
			spm.spu.SetRegion(r, spm.Lock)
		}

		spm.logf("SPM %s %#.8x-%#.8x secure, %#.8x-%#.8x nonsecure", k,
			k.Start(), l.NonSecureStart(k), l.NonSecureStart(k), k.Start()+k.Size())
	}
}

// Regions returns the current attribution of all regions of a memory type,
// as read back from hardware.
func (spm *SPM) Regions(k mem.Kind) (regions []mem.Region) {
	for n := 0; n < k.Regions(); n++ {
		regions = append(regions, spm.spu.Region(k, n))
	}

	return
}
