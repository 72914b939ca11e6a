// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spmsim

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/usbarmory/nrf-spm/config"
	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/spm"
	"github.com/usbarmory/nrf-spm/spu"
	"github.com/usbarmory/nrf-spm/util"
)

func newTestSession(t *testing.T, c *config.Config) (*Session, *bytes.Buffer) {
	return newTestSessionLevel(t, c, logrus.InfoLevel)
}

func newTestSessionLevel(t *testing.T, c *config.Config, level logrus.Level) (*Session, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer

	log := logrus.New()
	log.SetOutput(&out)
	log.SetLevel(level)

	s, err := New(c, log)

	if err != nil {
		t.Fatal(err)
	}

	return s, &out
}

func TestSessionBoot(t *testing.T) {
	s, out := newTestSession(t, config.Default())

	if err := s.Boot(); err != nil {
		t.Fatal(err)
	}

	if want := uint32(mem.NonSecureFlashStart+DefaultResetOffset) | 1; s.Machine.Entry != want {
		t.Errorf("entry %#x, want %#x", s.Machine.Entry, want)
	}

	if s.Machine.MSPNS != DefaultStackPointer {
		t.Errorf("MSP_NS %#x", s.Machine.MSPNS)
	}

	if s.SPM.Stage() != spm.NonSecureEntered {
		t.Errorf("stage %s", s.SPM.Stage())
	}

	for _, want := range []string{"Non-secure World entered", "world=secure"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("log does not contain %q", want)
		}
	}

	if err := s.Boot(); err == nil {
		t.Errorf("second boot without reset succeeded")
	}

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}

	if err := s.Boot(); err != nil {
		t.Errorf("boot after reset: %v", err)
	}
}

func TestSessionReports(t *testing.T) {
	s, _ := newTestSession(t, config.Default())

	if err := s.Boot(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer

	for _, tc := range []struct {
		name   string
		fn     func(io.Writer) error
		want   []string
		absent []string
	}{
		{"flash", func(w io.Writer) error { return s.Regions(w, mem.Flash) }, []string{"flash[01]", "flash[02]", "64 KiB secure"}, nil},
		{"ram", func(w io.Writer) error { return s.Regions(w, mem.RAM) }, []string{"ram[31]", "16 KiB secure"}, nil},
		{"peripherals", s.Peripherals, []string{"GPIOTE1", "SPU", "user-selectable"}, nil},
		{"policy", s.Policy, []string{"PRIS:1 BFHFNMINS:1 SYSRESETREQS:0", "ENABLE:0 ALLNS:1", "nonsecure entered"}, nil},
		{"interrupts", s.Interrupts, []string{"IRQ49 GPIOTE1"}, []string{"IRQ03", "IRQ13"}},
		{"trace", s.Trace, []string{"jump 0x00010201"}, []string{"ignored"}},
	} {
		buf.Reset()

		if err := tc.fn(&buf); err != nil {
			t.Errorf("%s: %v", tc.name, err)
		}

		for _, want := range tc.want {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("%s: output does not contain %q\n%s", tc.name, want, buf.String())
			}
		}

		for _, absent := range tc.absent {
			if strings.Contains(buf.String(), absent) {
				t.Errorf("%s: output contains %q\n%s", tc.name, absent, buf.String())
			}
		}
	}
}

func TestSessionFault(t *testing.T) {
	s, out := newTestSession(t, config.Default())

	if err := s.Fault(0x1000); err == nil {
		t.Errorf("fault before boot succeeded")
	}

	if err := s.Boot(); err != nil {
		t.Fatal(err)
	}

	if err := s.Fault(0x1000); err != nil {
		t.Fatal(err)
	}

	if !s.Machine.Halted {
		t.Errorf("core not halted")
	}

	if !strings.Contains(out.String(), "SFAR:0x00001000") {
		t.Errorf("fault not logged")
	}
}

func TestSessionImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.bin")
	img := []byte{0xf0, 0xff, 0x03, 0x20, 0x05, 0x01, 0x01, 0x00}

	if err := os.WriteFile(path, img, 0600); err != nil {
		t.Fatal(err)
	}

	c := config.Default()
	c.Image = path

	s, _ := newTestSession(t, c)

	if got := s.Header(); got != (spm.Header{StackPointer: 0x2003fff0, ResetHandler: 0x00010105}) {
		t.Errorf("header %s", got)
	}

	if err := s.Boot(); err != nil {
		t.Fatal(err)
	}

	if s.Machine.Entry != 0x00010105 {
		t.Errorf("entry %#x", s.Machine.Entry)
	}

	c.Image = filepath.Join(t.TempDir(), "missing.bin")

	if _, err := New(c, nil); err == nil {
		t.Errorf("missing image loaded")
	}
}

func TestSessionAudit(t *testing.T) {
	for _, tc := range []struct {
		level   logrus.Level
		records bool
	}{
		{logrus.InfoLevel, false},
		{logrus.DebugLevel, true},
	} {
		s, out := newTestSessionLevel(t, config.Default(), tc.level)

		if err := s.Boot(); err != nil {
			t.Fatal(err)
		}

		if got, want := len(s.Audit), spu.PERIPHID_COUNT-spu.FIRST_CONFIGURABLE; got != want {
			t.Fatalf("%s: audit records %d, want %d", tc.level, got, want)
		}

		if a := s.Audit[spu.GPIOTE1-spu.FIRST_CONFIGURABLE]; !a.Override || !a.NonSecure {
			t.Errorf("%s: GPIOTE1 record %s", tc.level, a)
		}

		for _, field := range []string{"peripheral assignment", "id=49", "name=GPIOTE1", "override=true", "nonsecure=true", "before=0x", "after=0x"} {
			if got := strings.Contains(out.String(), field); got != tc.records {
				t.Errorf("%s: log contains %q: %v, want %v", tc.level, field, got, tc.records)
			}
		}

		if err := s.Reset(); err != nil {
			t.Fatal(err)
		}

		if s.Audit != nil {
			t.Errorf("%s: audit retained across reset", tc.level)
		}
	}
}

func TestCheckSegment(t *testing.T) {
	l := mem.Default()
	periph := uint32(spu.SPU_BASE + spu.SPU_PERIPHID_PERM + 8*4)

	for _, tc := range []struct {
		name string
		addr uint32
		size int
		ok   bool
	}{
		{"nonsecure flash", mem.NonSecureFlashStart, 8, true},
		{"nonsecure flash end", mem.FlashStart + mem.FlashSize - 4, 4, true},
		{"nonsecure ram", mem.NonSecureRAMStart, 0x100, true},
		{"empty", periph, 0, true},
		{"secure flash", mem.FlashStart, 4, false},
		{"secure boundary", mem.NonSecureFlashStart - 4, 8, false},
		{"secure ram", mem.RAMStart, 4, false},
		{"peripheral", periph, 4, false},
		{"past flash end", mem.NonSecureFlashStart, mem.FlashSize, false},
		{"past ram end", mem.RAMStart + mem.RAMSize - 4, 8, false},
		{"address space wrap", 0xfffffffc, 8, false},
	} {
		err := checkSegment(l, util.Segment{Addr: tc.addr, Data: make([]byte, tc.size)})

		if tc.ok && err != nil {
			t.Errorf("%s: %v", tc.name, err)
		}

		if !tc.ok && err == nil {
			t.Errorf("%s: segment accepted", tc.name)
		}
	}
}

func TestSessionImageOutOfBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ns.bin")

	// runs past the end of flash when placed after the Secure image
	img := make([]byte, mem.FlashSize)
	copy(img, []byte{0xf0, 0xff, 0x03, 0x20})

	if err := os.WriteFile(path, img, 0600); err != nil {
		t.Fatal(err)
	}

	c := config.Default()
	c.Image = path

	log := logrus.New()
	log.SetOutput(io.Discard)

	s := &Session{Config: c, Log: log}

	if err := s.Reset(); err == nil {
		t.Fatalf("oversized image loaded")
	}

	if got := s.Machine.Peek(mem.NonSecureFlashStart); got != 0 {
		t.Errorf("rejected image partially loaded, %#x at image base", got)
	}
}
