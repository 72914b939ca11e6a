// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Size represents a memory size in bytes, it can be expressed as an integer
// (decimal or hexadecimal) or as a human readable string (e.g. "64 KiB").
type Size uint32

// ParseSize parses a memory size.
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s, 0, 32)

		if err != nil {
			return 0, fmt.Errorf("invalid size %q, %v", s, err)
		}

		return Size(n), nil
	}

	n, err := humanize.ParseBytes(s)

	if err != nil {
		return 0, fmt.Errorf("invalid size %q, %v", s, err)
	}

	if n > math.MaxUint32 {
		return 0, fmt.Errorf("invalid size %q, exceeds address space", s)
	}

	return Size(n), nil
}

func (s Size) String() string {
	return humanize.IBytes(uint64(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Size) UnmarshalText(text []byte) (err error) {
	*s, err = ParseSize(string(text))
	return
}

// MarshalText implements encoding.TextMarshaler.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}

	return s.UnmarshalText([]byte(node.Value))
}
