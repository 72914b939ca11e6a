// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWorldLog(t *testing.T) {
	var out bytes.Buffer

	l := &WorldLog{Secure: true, Output: &out}

	l.Write([]byte("partial"))

	if out.Len() != 0 {
		t.Fatalf("flushed before newline: %q", out.String())
	}

	l.Write([]byte(" line\nnext"))

	if got := out.String(); got != "partial line\n" {
		t.Errorf("got %q", got)
	}

	out.Reset()
	l.Write([]byte(strings.Repeat("x", outputLimit+1)))

	if out.Len() != outputLimit+1 {
		t.Errorf("buffer not flushed when full, %d bytes out", out.Len())
	}
}

func TestLoadRawImage(t *testing.T) {
	buf := []byte{0xf0, 0xff, 0x03, 0x20, 0x05, 0x00, 0x01, 0x00}

	img, err := LoadImage(buf, 0x10000)

	if err != nil {
		t.Fatal(err)
	}

	want := []Segment{{Addr: 0x10000, Data: buf}}

	if diff := cmp.Diff(want, img.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadImage(buf[:4], 0x10000); err == nil {
		t.Errorf("expected error on truncated image")
	}
}

func elf32(t *testing.T, paddr uint32, data []byte) []byte {
	var buf bytes.Buffer

	hdr := elf.Header32{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_ARM),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     paddr + 5,
		Phoff:     52,
		Ehsize:    52,
		Phentsize: 32,
		Phnum:     1,
	}

	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	prog := elf.Prog32{
		Type:   uint32(elf.PT_LOAD),
		Off:    52 + 32,
		Vaddr:  paddr,
		Paddr:  paddr,
		Filesz: uint32(len(data)),
		Memsz:  uint32(len(data)),
		Flags:  uint32(elf.PF_R | elf.PF_X),
		Align:  4,
	}

	for _, v := range []interface{}{hdr, prog, data} {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}

	return buf.Bytes()
}

func TestLoadELFImage(t *testing.T) {
	data := []byte{0xf0, 0xff, 0x03, 0x20, 0x05, 0x00, 0x01, 0x00}

	img, err := LoadImage(elf32(t, 0x10000, data), 0)

	if err != nil {
		t.Fatal(err)
	}

	if !img.ELF || img.Entry != 0x10005 {
		t.Errorf("ELF:%v entry:%#x", img.ELF, img.Entry)
	}

	want := []Segment{{Addr: 0x10000, Data: data}}

	if diff := cmp.Diff(want, img.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}

	if _, ok := img.SymbolAt(0x10005); ok {
		t.Errorf("symbol found in stripped image")
	}

	if _, err := img.LookupSym("Reset_Handler"); err == nil {
		t.Errorf("symbol found in stripped image")
	}
}

func TestImageSymbols(t *testing.T) {
	img := &Image{
		ELF: true,
		symbols: []elf.Symbol{
			{Name: "Reset_Handler", Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC), Value: 0x10201, Size: 0x20},
			{Name: "_stack_top", Info: elf.ST_INFO(elf.STB_GLOBAL, elf.STT_NOTYPE), Value: 0x20040000},
		},
	}

	sym, err := img.LookupSym("Reset_Handler")

	if err != nil {
		t.Fatal(err)
	}

	if sym.Value != 0x10201 || sym.Size != 0x20 {
		t.Errorf("Reset_Handler: %#x (%d bytes)", sym.Value, sym.Size)
	}

	for _, tc := range []struct {
		addr uint32
		name string
		ok   bool
	}{
		{0x10201, "Reset_Handler", true},
		{0x10210, "Reset_Handler", true},
		{0x10220, "", false},
		{0x20040000, "", false},
	} {
		name, ok := img.SymbolAt(tc.addr)

		if name != tc.name || ok != tc.ok {
			t.Errorf("%#x: got %q %v, want %q %v", tc.addr, name, ok, tc.name, tc.ok)
		}
	}
}
