// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package spm implements a Secure Partition Manager for the nRF9160.
//
// The partition manager runs in Secure state right after reset and, through
// a strictly ordered pipeline, attributes memory, peripherals and interrupts
// to the Non-secure World, locks down the core security policy and finally
// hands over control to the Non-secure image, never to return.
//
// All hardware accesses go through the hw.Bus and hw.Core capabilities
// passed to New, the pipeline assumes exclusive ownership of them until the
// Non-secure World is entered.
package spm

import (
	"fmt"

	"github.com/usbarmory/nrf-spm/armv8m"
	"github.com/usbarmory/nrf-spm/hw"
	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/nvmc"
	"github.com/usbarmory/nrf-spm/spu"
)

// Stage represents the partition manager pipeline state.
type Stage int

const (
	Reset Stage = iota
	MemoryPartitioned
	PeripheralsAssigned
	PolicyConfigured
	NonSecureEntered
)

func (s Stage) String() string {
	switch s {
	case Reset:
		return "reset"
	case MemoryPartitioned:
		return "memory partitioned"
	case PeripheralsAssigned:
		return "peripherals assigned"
	case PolicyConfigured:
		return "policy configured"
	case NonSecureEntered:
		return "nonsecure entered"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Logger represents the diagnostics sink, it is satisfied by *log.Logger
// and by logrus loggers and entries.
type Logger interface {
	Printf(format string, v ...interface{})
}

// AuditLogger is implemented by diagnostics sinks which record peripheral
// assignments as structured records rather than formatted lines.
type AuditLogger interface {
	Logger
	Audit(a Assignment)
}

// Options represents the partitioning parameters and optional features.
type Options struct {
	// Layout sets the Secure/Non-secure memory boundaries.
	Layout mem.Layout

	// NSC optionally configures a Non-secure Callable area.
	NSC *NSC

	// Lock makes region and peripheral attribution immutable until reset.
	Lock bool
	// ICache enables the flash instruction cache before entering the
	// Non-secure World.
	ICache bool
	// NonSecureDPPI attributes all DPPI channels to the Non-secure World.
	NonSecureDPPI bool
	// NonSecureGPIO attributes all GPIO port pins to the Non-secure World.
	NonSecureGPIO bool
}

// DefaultOptions returns the default boot options.
func DefaultOptions() Options {
	return Options{
		Layout:        mem.Default(),
		ICache:        true,
		NonSecureDPPI: true,
		NonSecureGPIO: true,
	}
}

// Validate returns an error if the options cannot be applied, it performs
// no hardware access.
func (opts Options) Validate() (err error) {
	if err = opts.Layout.Validate(); err != nil {
		return
	}

	if opts.NSC != nil {
		err = opts.NSC.Validate(opts.Layout)
	}

	return
}

// SPM represents a Secure Partition Manager instance.
type SPM struct {
	Options

	// Bus gives access to memory mapped registers and memory
	Bus hw.Bus
	// Core gives access to non memory mapped core state
	Core hw.Core
	// Log is the optional diagnostics sink
	Log Logger

	// Audit holds the records of the last peripheral assignment pass
	Audit []Assignment

	spu  *spu.SPU
	cpu  *armv8m.CPU
	nvmc *nvmc.NVMC

	stage Stage
}

// New returns a partition manager, with default options, operating on the
// given hardware capabilities. The log argument can be nil.
func New(bus hw.Bus, core hw.Core, log Logger) *SPM {
	return &SPM{
		Options: DefaultOptions(),
		Bus:     bus,
		Core:    core,
		Log:     log,
		spu:     spu.New(bus),
		cpu:     &armv8m.CPU{Bus: bus},
		nvmc:    nvmc.New(bus),
	}
}

// Stage returns the current pipeline stage.
func (spm *SPM) Stage() Stage {
	return spm.stage
}

func (spm *SPM) logf(format string, v ...interface{}) {
	if spm.Log != nil {
		spm.Log.Printf(format, v...)
	}
}

// advance moves the pipeline to the next stage, it panics if the current
// stage is not among the allowed ones.
func (spm *SPM) advance(next Stage, allowed ...Stage) {
	for _, s := range allowed {
		if spm.stage == s {
			spm.stage = next
			return
		}
	}

	panic(fmt.Sprintf("SPM cannot enter stage %q from %q", next, spm.stage))
}

// require panics if the current stage is not among the allowed ones.
func (spm *SPM) require(op string, allowed ...Stage) {
	for _, s := range allowed {
		if spm.stage == s {
			return
		}
	}

	panic(fmt.Sprintf("SPM cannot %s at stage %q", op, spm.stage))
}

// Boot runs the complete pipeline with the given options: memory
// partitioning, optional Non-secure Callable configuration, peripheral and
// interrupt assignment, security policy configuration and finally entry
// into the Non-secure image linked at the first Non-secure flash address.
//
// Invalid options cause a panic before any register write. On hardware the
// function never returns, if it does the core is halted.
func (spm *SPM) Boot(opts Options) {
	if err := opts.Validate(); err != nil {
		panic(fmt.Sprintf("SPM invalid options, %v", err))
	}

	spm.Options = opts

	spm.Partition(opts.Layout)

	if opts.NSC != nil {
		spm.ConfigureNSC(*opts.NSC)
	}

	spm.AssignPeripherals()
	spm.ConfigurePolicy()
	spm.EnterNonSecure(opts.Layout.NonSecureStart(mem.Flash))
}
