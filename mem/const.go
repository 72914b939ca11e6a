// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

// nRF9160 memory map, the SPU attributes flash and RAM in fixed size regions.
const (
	// Flash
	FlashStart      = 0x00000000
	FlashSize       = 0x00100000 // 1MB
	FlashRegionSize = 0x00008000 // 32KB

	// RAM
	RAMStart      = 0x20000000
	RAMSize       = 0x00040000 // 256KB
	RAMRegionSize = 0x00002000 // 8KB
)

// This example layout reserves the first 64KB of flash and the first 16KB of
// RAM for the Secure Partition Manager, the Non-secure image is linked right
// after it.
const (
	// Secure World SPM
	SecureFlashSize = 0x00010000 // 64KB
	SecureRAMSize   = 0x00004000 // 16KB

	// NonSecure World image
	NonSecureFlashStart = FlashStart + SecureFlashSize
	NonSecureRAMStart   = RAMStart + SecureRAMSize
)
