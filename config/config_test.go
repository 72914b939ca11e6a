// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/spm"
)

func write(t *testing.T, name string, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestParseSize(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Size
		err  bool
	}{
		{"65536", 0x10000, false},
		{"64 KiB", 0x10000, false},
		{"64KiB", 0x10000, false},
		{"1 MiB", 0x100000, false},
		{"0x4000", 0x4000, false},
		{"64 KB", 64000, false},
		{"8 GiB", 0, true},
		{"lots", 0, true},
		{"0xzz", 0, true},
	} {
		got, err := ParseSize(tc.in)

		if tc.err {
			if err == nil {
				t.Errorf("ParseSize(%q): expected error", tc.in)
			}

			continue
		}

		if err != nil || got != tc.want {
			t.Errorf("ParseSize(%q): got %d (%v), want %d", tc.in, got, err, tc.want)
		}
	}

	if got := Size(0x10000).String(); got != "64 KiB" {
		t.Errorf("String: got %q", got)
	}
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "spm.toml", `
secure_flash_size = "128 KiB"
secure_ram_size = 0x8000
lock = true
icache = false
image = "ns.elf"

[nsc]
memory = "flash"
region = 3
size = 32
`)

	c, err := Load(path)

	if err != nil {
		t.Fatal(err)
	}

	want := &Config{
		SecureFlashSize: 0x20000,
		SecureRAMSize:   0x8000,
		Lock:            true,
		ICache:          false,
		NonSecureDPPI:   true,
		NonSecureGPIO:   true,
		NSC:             &NSC{Memory: "flash", Region: 3, Size: 32},
		Image:           filepath.Join(filepath.Dir(path), "ns.elf"),
	}

	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	opts, err := c.Options()

	if err != nil {
		t.Fatal(err)
	}

	wantOpts := spm.Options{
		Layout:        mem.Layout{SecureFlashSize: 0x20000, SecureRAMSize: 0x8000},
		NSC:           &spm.NSC{Kind: mem.Flash, Region: 3, Size: 32},
		Lock:          true,
		NonSecureDPPI: true,
		NonSecureGPIO: true,
	}

	if diff := cmp.Diff(wantOpts, opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "spm.yaml", `
secure_flash_size: 64 KiB
secure_ram_size: 16384
nonsecure_gpio: false
header:
  stack_pointer: 0x2003fff0
  reset_handler: 0x00010004
`)

	c, err := Load(path)

	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.NonSecureGPIO = false
	want.Header = &Header{StackPointer: 0x2003fff0, ResetHandler: 0x00010004}

	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		data string
	}{
		{"misaligned.toml", `secure_flash_size = "40 KiB"`},
		{"oversized.yaml", `secure_ram_size: 512 KiB`},
		{"nsc.toml", "[nsc]\nregion = 5\nsize = 32\n"},
		{"memory.yml", "nsc:\n  memory: eeprom\n  size: 32\n"},
		{"unknown.toml", `secure_rom_size = 1`},
		{"unknown.yaml", `secure_rom_size: 1`},
		{"exclusive.toml", "image = \"ns.bin\"\n[header]\nstack_pointer = 1\n"},
		{"format.json", `{}`},
	} {
		if _, err := Load(write(t, tc.name, tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
