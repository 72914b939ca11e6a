// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"testing"
)

func TestRegionCount(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		want int
	}{
		{Flash, 32},
		{RAM, 32},
	} {
		if got := len(Default().Regions(tc.kind)); got != tc.want {
			t.Errorf("%s regions: got %d, want %d", tc.kind, got, tc.want)
		}

		if got := tc.kind.Regions(); got != tc.want {
			t.Errorf("%s Regions(): got %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestRegionsTileMemory(t *testing.T) {
	for _, k := range []Kind{Flash, RAM} {
		for b := uint32(0); b <= k.Size(); b += k.RegionSize() {
			l := Layout{SecureFlashSize: 0, SecureRAMSize: 0}

			if k == Flash {
				l.SecureFlashSize = b
			} else {
				l.SecureRAMSize = b
			}

			if err := l.Validate(); err != nil {
				t.Fatalf("%s boundary %#x: unexpected error %v", k, b, err)
			}

			next := uint32(0)

			for i, r := range l.Regions(k) {
				if r.Index != i {
					t.Errorf("%s boundary %#x: region %d has index %d", k, b, i, r.Index)
				}

				if r.Offset != next {
					t.Errorf("%s boundary %#x: region %d offset %#x, want %#x", k, b, i, r.Offset, next)
				}

				if r.Secure != (r.Offset < b) {
					t.Errorf("%s boundary %#x: region %d secure:%v", k, b, i, r.Secure)
				}

				if !r.Read || !r.Write || !r.Execute {
					t.Errorf("%s boundary %#x: region %d permissions narrowed", k, b, i)
				}

				next = r.Offset + r.Size
			}

			if next != k.Size() {
				t.Errorf("%s boundary %#x: regions end at %#x, want %#x", k, b, next, k.Size())
			}
		}
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		layout Layout
		valid  bool
	}{
		{"default", Default(), true},
		{"all secure", Layout{FlashSize, RAMSize}, true},
		{"all nonsecure", Layout{0, 0}, true},
		{"flash misaligned", Layout{FlashRegionSize + 1, 0}, false},
		{"ram misaligned", Layout{0, RAMRegionSize / 2}, false},
		{"flash oversized", Layout{FlashSize + FlashRegionSize, 0}, false},
		{"ram oversized", Layout{0, RAMSize + RAMRegionSize}, false},
	} {
		err := tc.layout.Validate()

		if tc.valid && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}

		if !tc.valid && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestSecure(t *testing.T) {
	l := Default()

	for _, tc := range []struct {
		addr uint32
		want bool
	}{
		{FlashStart, true},
		{NonSecureFlashStart - 4, true},
		{NonSecureFlashStart, false},
		{RAMStart, true},
		{NonSecureRAMStart, false},
		{RAMStart + RAMSize, false},
		{0x50000000, false},
	} {
		if got := l.Secure(tc.addr); got != tc.want {
			t.Errorf("Secure(%#x): got %v, want %v", tc.addr, got, tc.want)
		}
	}
}
