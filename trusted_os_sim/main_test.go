// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/usbarmory/nrf-spm/config"
	"github.com/usbarmory/nrf-spm/trusted_os_sim/internal"
)

func TestVerboseLogging(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		var out bytes.Buffer

		s, err := spmsim.New(config.Default(), newLogger(verbose, &out))

		if err != nil {
			t.Fatal(err)
		}

		if err := s.Boot(); err != nil {
			t.Fatal(err)
		}

		if !strings.Contains(out.String(), "Non-secure World entered") {
			t.Errorf("verbose:%v: boot not logged", verbose)
		}

		for _, field := range []string{"level=debug", "id=49", "name=GPIOTE1", "override=true"} {
			if got := strings.Contains(out.String(), field); got != verbose {
				t.Errorf("verbose:%v: log contains %q: %v", verbose, field, got)
			}
		}
	}
}
