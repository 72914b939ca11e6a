// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spmsim

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/usbarmory/nrf-spm/armv8m"
	"github.com/usbarmory/nrf-spm/config"
	"github.com/usbarmory/nrf-spm/hw/sim"
	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/spm"
	"github.com/usbarmory/nrf-spm/util"
)

// Non-secure image header used when neither an image nor a header is
// configured.
const (
	DefaultStackPointer = mem.RAMStart + mem.RAMSize
	DefaultResetOffset  = 0x200
)

// Session represents a simulated device running the partition manager.
type Session struct {
	Config *config.Config
	Log    *logrus.Logger

	Machine *sim.Machine
	SPM     *spm.SPM
	Image   *util.Image

	// Audit holds the peripheral assignment records of the last boot.
	Audit []spm.Assignment
}

// secureLog is the partition manager diagnostics sink, peripheral
// assignment records are logged at debug level with one field per value.
type secureLog struct {
	*logrus.Entry
}

func (l secureLog) Audit(a spm.Assignment) {
	l.WithFields(logrus.Fields{
		"id":        a.ID,
		"name":      a.Name,
		"before":    fmt.Sprintf("%#.8x", a.Before),
		"after":     fmt.Sprintf("%#.8x", a.After),
		"nonsecure": a.NonSecure,
		"override":  a.Override,
	}).Debug("peripheral assignment")
}

// New returns a session in reset state.
func New(c *config.Config, log *logrus.Logger) (s *Session, err error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s = &Session{
		Config: c,
		Log:    log,
	}

	return s, s.Reset()
}

// Reset returns the simulated device to its reset state and loads the
// Non-secure image, or header, at the first Non-secure flash address.
func (s *Session) Reset() (err error) {
	s.Machine = sim.NewNRF9160()
	s.SPM = spm.New(s.Machine, s.Machine, secureLog{s.Log.WithField("world", "secure")})
	s.Image = nil
	s.Audit = nil

	base := s.Config.Layout().NonSecureStart(mem.Flash)

	switch {
	case s.Config.Image != "":
		return s.load(s.Config.Image, base)
	case s.Config.Header != nil:
		s.Machine.Poke(base, s.Config.Header.StackPointer)
		s.Machine.Poke(base+4, s.Config.Header.ResetHandler)
	default:
		s.Machine.Poke(base, DefaultStackPointer)
		s.Machine.Poke(base+4, (base+DefaultResetOffset)|1)
	}

	return
}

func (s *Session) load(path string, base uint32) (err error) {
	buf, err := os.ReadFile(path)

	if err != nil {
		return
	}

	img, err := util.LoadImage(buf, base)

	if err != nil {
		return fmt.Errorf("could not load %s, %v", path, err)
	}

	l := s.Config.Layout()

	for _, seg := range img.Segments {
		if err = checkSegment(l, seg); err != nil {
			return fmt.Errorf("could not load %s, %v", path, err)
		}
	}

	for _, seg := range img.Segments {
		s.Machine.Load(seg.Addr, seg.Data)
	}

	if img.Segments[0].Addr != base {
		s.Log.Warnf("image starts at %#.8x, vector table expected at %#.8x", img.Segments[0].Addr, base)
	}

	s.Image = img

	s.Log.WithFields(logrus.Fields{
		"path":     path,
		"segments": len(img.Segments),
		"elf":      img.ELF,
	}).Info("Non-secure image loaded")

	return
}

// checkSegment returns an error unless the segment lies entirely within
// Non-secure flash or Non-secure RAM.
func checkSegment(l mem.Layout, seg util.Segment) error {
	if len(seg.Data) == 0 {
		return nil
	}

	last := uint64(seg.Addr) + uint64(len(seg.Data)) - 1

	if last > math.MaxUint32 {
		return fmt.Errorf("segment at %#.8x exceeds the address space", seg.Addr)
	}

	end := uint32(last)

	k, _, ok := mem.Lookup(seg.Addr)
	kEnd, _, okEnd := mem.Lookup(end)

	switch {
	case !ok || !okEnd || k != kEnd:
		return fmt.Errorf("segment %#.8x-%#.8x is not within flash or RAM", seg.Addr, end)
	case l.Secure(seg.Addr) || l.Secure(end):
		return fmt.Errorf("segment %#.8x-%#.8x overlaps Secure memory", seg.Addr, end)
	}

	return nil
}

// Header returns the Non-secure image header.
func (s *Session) Header() spm.Header {
	return spm.ReadHeader(s.Machine, s.Config.Layout().NonSecureStart(mem.Flash))
}

// Boot runs the partition manager until the Non-secure World is entered.
func (s *Session) Boot() (err error) {
	if s.Machine.Entered || s.Machine.Halted {
		return errors.New("already booted, reset first")
	}

	opts, err := s.Config.Options()

	if err != nil {
		return
	}

	err = s.Machine.Run(func() { s.SPM.Boot(opts) })
	s.Audit = s.SPM.Audit

	if err != nil {
		return
	}

	if s.Machine.Halted {
		return errors.New("core halted")
	}

	fields := logrus.Fields{
		"entry":      fmt.Sprintf("%#.8x", s.Machine.Entry),
		"msp_ns":     fmt.Sprintf("%#.8x", s.Machine.MSPNS),
		"control_ns": fmt.Sprintf("%#x", s.Machine.Control),
	}

	if s.Image != nil {
		if name, ok := s.Image.SymbolAt(s.Machine.Entry); ok {
			fields["symbol"] = name
		}
	}

	s.Log.WithFields(fields).Info("Non-secure World entered")

	return
}

// Fault raises a SecureFault, as if the Non-secure World accessed a Secure
// address, which halts the core.
func (s *Session) Fault(addr uint32) (err error) {
	if !s.Machine.Entered || s.Machine.Halted {
		return errors.New("Non-secure World not running")
	}

	s.Machine.Poke(armv8m.SAU_SFSR, 1<<armv8m.SFSR_SFARVALID|1<<armv8m.SFSR_AUVIOL)
	s.Machine.Poke(armv8m.SAU_SFAR, addr)

	if err = s.Machine.Run(s.SPM.SecureFault); err != nil {
		return
	}

	if !s.Machine.Halted {
		return errors.New("core not halted")
	}

	return
}
