// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

// Lookup returns the memory type and region index of a physical address.
func Lookup(addr uint32) (k Kind, index int, ok bool) {
	for _, k = range []Kind{Flash, RAM} {
		if addr >= k.Start() && addr-k.Start() < k.Size() {
			return k, int((addr - k.Start()) / k.RegionSize()), true
		}
	}

	return
}

// Secure returns whether a physical address falls within Secure World
// memory, addresses outside flash and RAM are reported as not Secure.
func (l Layout) Secure(addr uint32) bool {
	k, _, ok := Lookup(addr)

	if !ok {
		return false
	}

	return addr-k.Start() < l.SecureSize(k)
}
