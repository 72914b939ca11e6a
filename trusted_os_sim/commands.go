// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/usbarmory/nrf-spm/config"
	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/trusted_os_sim/cmd"
	"github.com/usbarmory/nrf-spm/trusted_os_sim/internal"
	"github.com/usbarmory/nrf-spm/util"
)

const banner = "nRF9160 Secure Partition Manager simulator"

func session(args []interface{}) (*spmsim.Session, *logrus.Logger) {
	conf := args[0].(*config.Config)
	log := args[1].(*logrus.Logger)

	s, err := spmsim.New(conf, log)

	if err != nil {
		log.Fatalf("could not reset simulated device, %v", err)
	}

	return s, log
}

// Boot implements subcommands.Command for the "boot" command.
type Boot struct {
	trace bool
}

// Name implements subcommands.Command.Name.
func (*Boot) Name() string {
	return "boot"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Boot) Synopsis() string {
	return "run the partition manager and show the resulting security policy"
}

// Usage implements subcommands.Command.Usage.
func (*Boot) Usage() string {
	return "boot [flags]\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (b *Boot) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&b.trace, "trace", false, "show all register accesses")
}

// Execute implements subcommands.Command.Execute.
func (b *Boot) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	s, log := session(args)

	if err := s.Boot(); err != nil {
		log.Errorf("boot failed, %v", err)
		return subcommands.ExitFailure
	}

	if b.trace {
		if err := s.Trace(os.Stdout); err != nil {
			return subcommands.ExitFailure
		}
	}

	if err := s.Policy(os.Stdout); err != nil {
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// Regions implements subcommands.Command for the "regions" command.
type Regions struct{}

// Name implements subcommands.Command.Name.
func (*Regions) Name() string {
	return "regions"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Regions) Synopsis() string {
	return "boot and show flash and RAM region attribution"
}

// Usage implements subcommands.Command.Usage.
func (*Regions) Usage() string {
	return "regions [flash|ram]\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Regions) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Regions) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	kinds := []mem.Kind{mem.Flash, mem.RAM}

	switch f.NArg() {
	case 0:
	case 1:
		k, err := config.ParseKind(f.Arg(0))

		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}

		kinds = []mem.Kind{k}
	default:
		f.Usage()
		return subcommands.ExitUsageError
	}

	s, log := session(args)

	if err := s.Boot(); err != nil {
		log.Errorf("boot failed, %v", err)
		return subcommands.ExitFailure
	}

	for _, k := range kinds {
		if err := s.Regions(os.Stdout, k); err != nil {
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}

// Peripherals implements subcommands.Command for the "peripherals" command.
type Peripherals struct {
	itns bool
}

// Name implements subcommands.Command.Name.
func (*Peripherals) Name() string {
	return "peripherals"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Peripherals) Synopsis() string {
	return "boot and show peripheral and interrupt attribution"
}

// Usage implements subcommands.Command.Usage.
func (*Peripherals) Usage() string {
	return "peripherals [flags]\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (p *Peripherals) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.itns, "itns", false, "only show interrupts targeting the Non-secure World")
}

// Execute implements subcommands.Command.Execute.
func (p *Peripherals) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, log := session(args)

	if err := s.Boot(); err != nil {
		log.Errorf("boot failed, %v", err)
		return subcommands.ExitFailure
	}

	var err error

	if p.itns {
		err = s.Interrupts(os.Stdout)
	} else {
		err = s.Peripherals(os.Stdout)
	}

	if err != nil {
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// Console implements subcommands.Command for the "console" command.
type Console struct {
	ssh string
}

// Name implements subcommands.Command.Name.
func (*Console) Name() string {
	return "console"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Console) Synopsis() string {
	return "interactive console on the simulated device"
}

// Usage implements subcommands.Command.Usage.
func (*Console) Usage() string {
	return "console [flags]\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *Console) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ssh, "ssh", "", "serve the console over SSH on the given address instead of the local terminal")
}

// Execute implements subcommands.Command.Execute.
func (c *Console) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s, log := session(args)
	cmd.Session = s

	worldLog := &util.WorldLog{Secure: true}
	log.SetOutput(worldLog)

	console := &util.Console{
		Banner:  banner,
		Help:    cmd.Help(nil),
		Handler: cmd.Handle,
		Log:     worldLog,
	}

	if c.ssh != "" {
		listener, err := net.Listen("tcp", c.ssh)

		if err != nil {
			log.Errorf("could not listen on %s, %v", c.ssh, err)
			return subcommands.ExitFailure
		}

		if err = console.Start(listener); err != nil {
			log.Errorf("could not start console, %v", err)
			return subcommands.ExitFailure
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig

		listener.Close()

		return subcommands.ExitSuccess
	}

	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		log.Error("standard input is not a terminal, use -ssh")
		return subcommands.ExitFailure
	}

	state, err := term.MakeRaw(fd)

	if err != nil {
		log.Errorf("could not set terminal raw mode, %v", err)
		return subcommands.ExitFailure
	}

	defer term.Restore(fd, state)

	console.Serve(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout})

	return subcommands.ExitSuccess
}
