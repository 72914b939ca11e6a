// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spm

import (
	"github.com/usbarmory/nrf-spm/hw"
)

// Fault logs a fatal error, if a sink is available, and halts the core. It
// never returns.
func Fault(core hw.Core, log Logger, format string, v ...interface{}) {
	if log != nil {
		log.Printf("SPM fatal error, "+format, v...)
	}

	core.Halt()
}

// SecureFault handles the SecureFault exception, the violation is reported
// and the core halted as execution cannot safely resume.
func (spm *SPM) SecureFault() {
	sfsr, sfar, valid := spm.cpu.SecureFaultStatus()

	if valid {
		Fault(spm.Core, spm.Log, "SecureFault (SFSR:%#.8x SFAR:%#.8x)", sfsr, sfar)
	} else {
		Fault(spm.Core, spm.Log, "SecureFault (SFSR:%#.8x)", sfsr)
	}
}
