// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spmsim

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/usbarmory/nrf-spm/armv8m"
	"github.com/usbarmory/nrf-spm/hw/sim"
	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/nvmc"
	"github.com/usbarmory/nrf-spm/spu"
)

func attr(secure bool) string {
	if secure {
		return "secure"
	}

	return "nonsecure"
}

func flag(set bool, name string) string {
	if set {
		return name
	}

	return "-"
}

// Regions writes the attribution of all regions of a memory type.
func (s *Session) Regions(w io.Writer, k mem.Kind) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)

	fmt.Fprintf(tw, "REGION\tSTART\tEND\tSIZE\tATTR\tPERM\n")

	var secure uint32

	for _, r := range s.SPM.Regions(k) {
		if r.Secure {
			secure += r.Size
		}

		perm := flag(r.Read, "r") + flag(r.Write, "w") + flag(r.Execute, "x")
		fmt.Fprintf(tw, "%s[%.2d]\t%#.8x\t%#.8x\t%s\t%s\t%s\n", k, r.Index, r.Start(), r.End(), humanize.IBytes(uint64(r.Size)), attr(r.Secure), perm)
	}

	fmt.Fprintf(tw, "\t\t\t\t%s secure\t\n", humanize.IBytes(uint64(secure)))

	return tw.Flush()
}

// Peripherals writes the state of all present peripherals.
func (s *Session) Peripherals(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)

	fmt.Fprintf(tw, "ID\tNAME\tMAPPING\tATTR\tDMA\tIRQ\tLOCK\tPERM\n")

	for _, p := range s.SPM.Peripherals() {
		if !p.Present {
			continue
		}

		dma := "-"

		if p.DMA == spu.SeparateAttribute {
			dma = attr(p.DMASecure)
		}

		fmt.Fprintf(tw, "%.2d\t%s\t%s\t%s\t%s\t%s\t%v\t%#.8x\n", p.ID, spu.Name(p.ID), p.Mapping, attr(p.Secure), dma,
			attr(!s.SPM.InterruptNonSecure(p.ID)), p.Locked, p.Perm)
	}

	return tw.Flush()
}

// Policy writes the core security policy and Non-secure entry state.
func (s *Session) Policy(w io.Writer) error {
	m := s.Machine
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)

	aircr := m.Read(armv8m.SCB_AIRCR)

	fmt.Fprintf(tw, "AIRCR\t%#.8x\tPRIS:%d BFHFNMINS:%d SYSRESETREQS:%d\n", aircr,
		aircr>>armv8m.AIRCR_PRIS&1, aircr>>armv8m.AIRCR_BFHFNMINS&1, aircr>>armv8m.AIRCR_SYSRESETREQS&1)

	shcsr := m.Read(armv8m.SCB_SHCSR)
	fmt.Fprintf(tw, "SHCSR\t%#.8x\tSECUREFAULTENA:%d\n", shcsr, shcsr>>armv8m.SHCSR_SECUREFAULTENA&1)

	ctrl := m.Read(armv8m.SAU_CTRL)
	fmt.Fprintf(tw, "SAU_CTRL\t%#.8x\tENABLE:%d ALLNS:%d\n", ctrl, ctrl>>armv8m.SAU_CTRL_ENABLE&1, ctrl>>armv8m.SAU_CTRL_ALLNS&1)

	fmt.Fprintf(tw, "NSACR\t%#.8x\t\n", m.Read(armv8m.SCB_NSACR))
	fmt.Fprintf(tw, "CPACR\t%#.8x\t\n", m.Read(armv8m.SCB_CPACR))
	fmt.Fprintf(tw, "CPACR_NS\t%#.8x\t\n", m.Read(armv8m.SCB_CPACR_NS))
	fmt.Fprintf(tw, "VTOR_NS\t%#.8x\t\n", m.Read(armv8m.SCB_VTOR_NS))
	fmt.Fprintf(tw, "ICACHECNF\t%#.8x\tCACHEEN:%v\n", m.Read(nvmc.NVMC_BASE+nvmc.NVMC_ICACHECNF), nvmc.New(m).ICache())
	fmt.Fprintf(tw, "DPPI.PERM\t%#.8x\t\n", m.Read(spu.SPU_BASE+spu.SPU_DPPI_PERM))
	fmt.Fprintf(tw, "GPIOPORT.PERM\t%#.8x\t\n", m.Read(spu.SPU_BASE+spu.SPU_GPIOPORT_PERM))

	for n := uint32(0); n < spu.NSC_COUNT; n++ {
		fmt.Fprintf(tw, "FLASHNSC[%d]\t%#.8x\tSIZE:%#x\n", n,
			m.Read(spu.SPU_BASE+spu.SPU_FLASHNSC_REGION+n*spu.NSC_STRIDE),
			m.Read(spu.SPU_BASE+spu.SPU_FLASHNSC_SIZE+n*spu.NSC_STRIDE))
		fmt.Fprintf(tw, "RAMNSC[%d]\t%#.8x\tSIZE:%#x\n", n,
			m.Read(spu.SPU_BASE+spu.SPU_RAMNSC_REGION+n*spu.NSC_STRIDE),
			m.Read(spu.SPU_BASE+spu.SPU_RAMNSC_SIZE+n*spu.NSC_STRIDE))
	}

	fmt.Fprintf(tw, "MSP_NS\t%#.8x\t\n", m.MSPNS)
	fmt.Fprintf(tw, "PSP_NS\t%#.8x\t\n", m.PSPNS)
	fmt.Fprintf(tw, "CONTROL_NS\t%#.8x\tnPRIV:%d SPSEL:%d\n", m.Control, m.Control>>armv8m.CONTROL_NPRIV&1, m.Control>>armv8m.CONTROL_SPSEL&1)

	state := s.SPM.Stage().String()

	switch {
	case m.Halted:
		state = "halted"
	case m.Entered:
		state = fmt.Sprintf("%s at %#.8x", state, m.Entry)
	}

	fmt.Fprintf(tw, "STATE\t%s\t\n", state)

	return tw.Flush()
}

// Interrupts writes all interrupts targeting the Non-secure World.
func (s *Session) Interrupts(w io.Writer) error {
	n := 0

	for irq := 0; irq < armv8m.NVIC_ITNS_COUNT*armv8m.NVIC_ITNS_WIDTH; irq++ {
		if !s.SPM.InterruptNonSecure(irq) {
			continue
		}

		fmt.Fprintf(w, "IRQ%.2d %s\n", irq, spu.Name(irq))
		n++
	}

	_, err := fmt.Fprintf(w, "%d interrupts target the Non-secure World\n", n)

	return err
}

// Trace writes all register accesses performed so far.
func (s *Session) Trace(w io.Writer) (err error) {
	s.Machine.Lock()
	trace := append([]sim.Event(nil), s.Machine.Trace...)
	s.Machine.Unlock()

	for i, ev := range trace {
		if _, err = fmt.Fprintf(w, "%4d %s\n", i, ev); err != nil {
			return
		}
	}

	return
}
