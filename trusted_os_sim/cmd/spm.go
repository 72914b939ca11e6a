// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/term"
)

func init() {
	Add(Cmd{
		Name: "boot",
		Help: "run the partition manager and enter the Non-secure World",
		Fn:   bootCmd,
	})

	Add(Cmd{
		Name: "reset",
		Help: "reset the simulated device and reload the Non-secure image",
		Fn:   resetCmd,
	})

	Add(Cmd{
		Name: "header",
		Help: "show the Non-secure image header",
		Fn:   headerCmd,
	})

	Add(Cmd{
		Name:    "fault",
		Args:    1,
		Pattern: regexp.MustCompile(`^fault ([[:xdigit:]]+)$`),
		Syntax:  "<hex addr>",
		Help:    "raise a SecureFault at the given address",
		Fn:      faultCmd,
	})
}

func bootCmd(_ *term.Terminal, _ []string) (res string, err error) {
	if err = Session.Boot(); err != nil {
		return
	}

	return fmt.Sprintf("entered Non-secure World at %#.8x", Session.Machine.Entry), nil
}

func resetCmd(_ *term.Terminal, _ []string) (res string, err error) {
	return "", Session.Reset()
}

func headerCmd(_ *term.Terminal, _ []string) (res string, err error) {
	return Session.Header().String(), nil
}

func faultCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := strconv.ParseUint(arg[0], 16, 32)

	if err != nil {
		return "", fmt.Errorf("invalid address: %v", err)
	}

	if err = Session.Fault(uint32(addr)); err != nil {
		return
	}

	return "core halted, reset to continue", nil
}
