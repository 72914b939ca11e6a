// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package armv8m

import (
	"github.com/usbarmory/tamago/bits"
)

// CONTROL fields
const (
	// Thread mode is unprivileged when set
	CONTROL_NPRIV = 0
	// Thread mode uses PSP when set
	CONTROL_SPSEL = 1
)

// PrivilegedMSP returns a CONTROL value with all fields of val preserved
// except for privileged Thread mode and Main Stack Pointer selection.
func PrivilegedMSP(val uint32) uint32 {
	bits.Clear(&val, CONTROL_NPRIV)
	bits.Clear(&val, CONTROL_SPSEL)

	return val
}
