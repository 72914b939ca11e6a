// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"
)

// Kind identifies a memory type attributed by the SPU.
type Kind int

const (
	Flash Kind = iota
	RAM
)

func (k Kind) String() string {
	switch k {
	case Flash:
		return "flash"
	case RAM:
		return "ram"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Start returns the physical base address of the memory type.
func (k Kind) Start() uint32 {
	if k == RAM {
		return RAMStart
	}

	return FlashStart
}

// Size returns the total size of the memory type.
func (k Kind) Size() uint32 {
	if k == RAM {
		return RAMSize
	}

	return FlashSize
}

// RegionSize returns the SPU region granularity of the memory type.
func (k Kind) RegionSize() uint32 {
	if k == RAM {
		return RAMRegionSize
	}

	return FlashRegionSize
}

// Regions returns the number of SPU regions tiling the memory type.
func (k Kind) Regions() int {
	return int(k.Size() / k.RegionSize())
}

// Region represents one SPU flash or RAM region.
type Region struct {
	Kind   Kind
	Index  int
	Offset uint32
	Size   uint32

	Secure  bool
	Read    bool
	Write   bool
	Execute bool
}

// Start returns the region physical address.
func (r Region) Start() uint32 {
	return r.Kind.Start() + r.Offset
}

// End returns the region physical end address (exclusive).
func (r Region) End() uint32 {
	return r.Start() + r.Size
}

func (r Region) String() string {
	attr := "ns"

	if r.Secure {
		attr = "s"
	}

	return fmt.Sprintf("%s[%.2d] %#.8x-%#.8x %s", r.Kind, r.Index, r.Start(), r.End(), attr)
}

// Layout represents the Secure/NonSecure boundary parameters, each size is
// the amount of memory, starting from the memory base, retained by the
// Secure World.
type Layout struct {
	SecureFlashSize uint32
	SecureRAMSize   uint32
}

// Default returns the example layout.
func Default() Layout {
	return Layout{
		SecureFlashSize: SecureFlashSize,
		SecureRAMSize:   SecureRAMSize,
	}
}

// SecureSize returns the Secure boundary for the given memory type.
func (l Layout) SecureSize(k Kind) uint32 {
	if k == RAM {
		return l.SecureRAMSize
	}

	return l.SecureFlashSize
}

// NonSecureStart returns the first Non-secure address of the given memory
// type.
func (l Layout) NonSecureStart(k Kind) uint32 {
	return k.Start() + l.SecureSize(k)
}

// Validate returns an error if any boundary is not a multiple of the region
// granularity or exceeds the memory size.
func (l Layout) Validate() error {
	for _, k := range []Kind{Flash, RAM} {
		size := l.SecureSize(k)

		if size%k.RegionSize() != 0 {
			return fmt.Errorf("secure %s size %#x is not a multiple of %#x", k, size, k.RegionSize())
		}

		if size > k.Size() {
			return fmt.Errorf("secure %s size %#x exceeds %#x", k, size, k.Size())
		}
	}

	return nil
}

// Regions returns all regions of the given memory type, in ascending offset
// order, with their security attribute set according to the layout. The
// layout must be valid.
func (l Layout) Regions(k Kind) (regions []Region) {
	boundary := l.SecureSize(k)

	for i := 0; i < k.Regions(); i++ {
		offset := uint32(i) * k.RegionSize()

		regions = append(regions, Region{
			Kind:    k,
			Index:   i,
			Offset:  offset,
			Size:    k.RegionSize(),
			Secure:  offset < boundary,
			Read:    true,
			Write:   true,
			Execute: true,
		})
	}

	return
}
