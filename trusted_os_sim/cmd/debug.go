// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"golang.org/x/term"
)

func init() {
	Add(Cmd{
		Name:    "peek",
		Args:    1,
		Pattern: regexp.MustCompile(`^peek ([[:xdigit:]]+)$`),
		Syntax:  "<hex addr>",
		Help:    "read a 32-bit word",
		Fn:      peekCmd,
	})

	Add(Cmd{
		Name:    "poke",
		Args:    2,
		Pattern: regexp.MustCompile(`^poke ([[:xdigit:]]+) ([[:xdigit:]]+)$`),
		Syntax:  "<hex addr> <hex val>",
		Help:    "write a 32-bit word",
		Fn:      pokeCmd,
	})

	Add(Cmd{
		Name: "trace",
		Help: "show all register accesses",
		Fn:   traceCmd,
	})

	Add(Cmd{
		Name:    "sym",
		Args:    1,
		Pattern: regexp.MustCompile(`^sym ([[:xdigit:]]+)$`),
		Syntax:  "<hex addr>",
		Help:    "resolve a Non-secure image address (ELF only)",
		Fn:      symCmd,
	})

	Add(Cmd{
		Name:    "lookup",
		Args:    1,
		Pattern: regexp.MustCompile(`^lookup (\S+)$`),
		Syntax:  "<symbol>",
		Help:    "resolve a Non-secure image symbol address (ELF only)",
		Fn:      lookupCmd,
	})
}

func parseWord(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 16, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %v", s, err)
	}

	return uint32(n), nil
}

func peekCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := parseWord(arg[0])

	if err != nil {
		return
	}

	return fmt.Sprintf("%#.8x: %#.8x", addr, Session.Machine.Read(addr)), nil
}

func pokeCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := parseWord(arg[0])

	if err != nil {
		return
	}

	val, err := parseWord(arg[1])

	if err != nil {
		return
	}

	Session.Machine.Write(addr, val)

	return fmt.Sprintf("%#.8x: %#.8x", addr, Session.Machine.Read(addr)), nil
}

func traceCmd(_ *term.Terminal, _ []string) (res string, err error) {
	var buf bytes.Buffer
	err = Session.Trace(&buf)
	return buf.String(), err
}

func symCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := parseWord(arg[0])

	if err != nil {
		return
	}

	if Session.Image == nil || !Session.Image.ELF {
		return "", errors.New("no ELF image loaded")
	}

	name, ok := Session.Image.SymbolAt(addr)

	if !ok {
		return "", fmt.Errorf("no symbol at %#.8x", addr)
	}

	return fmt.Sprintf("%#.8x: %s", addr, name), nil
}

func lookupCmd(_ *term.Terminal, arg []string) (res string, err error) {
	if Session.Image == nil || !Session.Image.ELF {
		return "", errors.New("no ELF image loaded")
	}

	sym, err := Session.Image.LookupSym(arg[0])

	if err != nil {
		return
	}

	return fmt.Sprintf("%s: %#.8x (%d bytes)", sym.Name, sym.Value, sym.Size), nil
}
