// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tinygo && nrf9160

package main

import (
	"log"
	"os"
	"runtime"

	"github.com/usbarmory/nrf-spm/hw"
	"github.com/usbarmory/nrf-spm/spm"
)

var manager *spm.SPM

func init() {
	log.SetFlags(log.Ltime)
	log.SetOutput(os.Stdout)

	log.Printf("%s/%s (%s) • Secure Partition Manager (Secure World)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

//export SecureFault_Handler
func secureFaultHandler() {
	if manager == nil {
		spm.Fault(hw.CortexM{}, nil, "SecureFault before initialization")
	}

	manager.SecureFault()
}

func main() {
	manager = spm.New(hw.MMIO{}, hw.CortexM{}, log.Default())
	manager.Boot(spm.DefaultOptions())
}
