// Copyright 2022 The Armored Witness OS authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"sort"
)

// Segment represents a loadable image portion.
type Segment struct {
	Addr uint32
	Data []byte
}

// Image represents a Non-secure firmware image.
type Image struct {
	// ELF is set when the image was parsed from an ELF file
	ELF bool
	// Entry is the ELF entry point, if available
	Entry uint32
	// Segments holds all loadable segments in ascending address order
	Segments []Segment

	symbols []elf.Symbol
}

// LoadImage parses a Non-secure image, ELF files are loaded at the physical
// address of each PT_LOAD segment while raw binaries are loaded at base.
func LoadImage(buf []byte, base uint32) (img *Image, err error) {
	if !bytes.HasPrefix(buf, []byte(elf.ELFMAG)) {
		if len(buf) < 8 {
			return nil, errors.New("image too short")
		}

		return &Image{
			Segments: []Segment{{Addr: base, Data: buf}},
		}, nil
	}

	exe, err := elf.NewFile(bytes.NewReader(buf))

	if err != nil {
		return
	}

	if exe.Class != elf.ELFCLASS32 || exe.Machine != elf.EM_ARM {
		return nil, fmt.Errorf("unsupported ELF %s/%s", exe.Class, exe.Machine)
	}

	img = &Image{
		ELF:   true,
		Entry: uint32(exe.Entry),
	}

	for _, prog := range exe.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}

		data := make([]byte, prog.Filesz)

		if _, err = prog.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("could not read segment at %#x, %v", prog.Paddr, err)
		}

		img.Segments = append(img.Segments, Segment{
			Addr: uint32(prog.Paddr),
			Data: data,
		})
	}

	if len(img.Segments) == 0 {
		return nil, errors.New("no loadable segments")
	}

	sort.Slice(img.Segments, func(i, j int) bool {
		return img.Segments[i].Addr < img.Segments[j].Addr
	})

	// stripped images have no symbol table
	img.symbols, _ = exe.Symbols()

	return
}

// LookupSym returns the symbol matching name.
func (img *Image) LookupSym(name string) (*elf.Symbol, error) {
	for _, sym := range img.symbols {
		if sym.Name == name {
			return &sym, nil
		}
	}

	return nil, errors.New("symbol not found")
}

// SymbolAt returns the name of the function containing addr, the Thumb bit
// is ignored.
func (img *Image) SymbolAt(addr uint32) (name string, ok bool) {
	addr &^= 1

	for _, sym := range img.symbols {
		if elf.ST_TYPE(sym.Info) != elf.STT_FUNC {
			continue
		}

		start := uint32(sym.Value) &^ 1

		if addr == start || (addr > start && addr < start+uint32(sym.Size)) {
			return sym.Name, true
		}
	}

	return
}
