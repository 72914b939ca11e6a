// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"regexp"

	"golang.org/x/term"

	"github.com/usbarmory/nrf-spm/config"
	"github.com/usbarmory/nrf-spm/mem"
)

func init() {
	Add(Cmd{
		Name:    "regions",
		Args:    1,
		Pattern: regexp.MustCompile(`^regions(?: (flash|ram))?$`),
		Syntax:  "(flash|ram)?",
		Help:    "show flash and/or RAM region attribution",
		Fn:      regionsCmd,
	})

	Add(Cmd{
		Name: "periph",
		Help: "show peripheral attribution (SPU PERIPHID table)",
		Fn:   periphCmd,
	})

	Add(Cmd{
		Name: "itns",
		Help: "show interrupts targeting the Non-secure World",
		Fn:   itnsCmd,
	})
}

func regionsCmd(_ *term.Terminal, arg []string) (res string, err error) {
	var buf bytes.Buffer

	kinds := []mem.Kind{mem.Flash, mem.RAM}

	if len(arg) == 1 && arg[0] != "" {
		k, err := config.ParseKind(arg[0])

		if err != nil {
			return "", err
		}

		kinds = []mem.Kind{k}
	}

	for _, k := range kinds {
		if err = Session.Regions(&buf, k); err != nil {
			return
		}
	}

	return buf.String(), nil
}

func periphCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer
	err = Session.Peripherals(&buf)
	return buf.String(), err
}

func itnsCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer
	err = Session.Interrupts(&buf)
	return buf.String(), err
}
