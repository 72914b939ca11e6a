// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spu

import (
	"fmt"
	"math/bits"

	"github.com/usbarmory/nrf-spm/mem"
)

// Non-secure Callable area bounds, the area is placed at the end of its
// region.
const (
	NSC_MIN_SIZE = 32
	NSC_MAX_SIZE = 4096
)

// NSCSizeCode returns the FLASHNSC[n].SIZE / RAMNSC[n].SIZE encoding of a
// Non-secure Callable area size, the size must be a power of two between
// NSC_MIN_SIZE and NSC_MAX_SIZE.
func NSCSizeCode(size uint32) (code uint32, err error) {
	if size < NSC_MIN_SIZE || size > NSC_MAX_SIZE || size&(size-1) != 0 {
		return 0, fmt.Errorf("invalid NSC size %d", size)
	}

	// 32 bytes is encoded as 1, each doubling increments the code
	return uint32(bits.TrailingZeros32(size)) - 4, nil
}

// SetNonSecureCallable configures Non-secure Callable area n, of the given
// size in bytes, at the end of a flash or RAM region.
func (spu *SPU) SetNonSecureCallable(k mem.Kind, n int, region int, size uint32, lock bool) (err error) {
	if n < 0 || n >= NSC_COUNT {
		return fmt.Errorf("invalid NSC index %d", n)
	}

	if region < 0 || region >= k.Regions() {
		return fmt.Errorf("invalid %s region index %d", k, region)
	}

	code, err := NSCSizeCode(size)

	if err != nil {
		return
	}

	regionOff, sizeOff := uint32(SPU_FLASHNSC_REGION), uint32(SPU_FLASHNSC_SIZE)

	if k == mem.RAM {
		regionOff, sizeOff = SPU_RAMNSC_REGION, SPU_RAMNSC_SIZE
	}

	val := uint32(region) << NSC_REGION

	if lock {
		val |= 1 << NSC_LOCK
	}

	spu.reg(regionOff + uint32(n)*NSC_STRIDE).Write(val)

	val = code

	if lock {
		val |= 1 << NSC_LOCK
	}

	spu.reg(sizeOff + uint32(n)*NSC_STRIDE).Write(val)

	return
}
