// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// The trusted_os_sim command runs the Secure Partition Manager against a
// simulated nRF9160, to inspect the resulting security configuration.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/usbarmory/nrf-spm/config"
	"github.com/usbarmory/nrf-spm/util"
)

var (
	configPath = flag.String("config", "", "configuration file (.toml, .yaml or .yml), defaults apply when empty")
	verbose    = flag.Bool("v", false, "enable debug logging")
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(new(Boot), "")
	subcommands.Register(new(Regions), "")
	subcommands.Register(new(Peripherals), "")
	subcommands.Register(new(Console), "")

	flag.Parse()

	conf := config.Default()

	if *configPath != "" {
		var err error

		if conf, err = config.Load(*configPath); err != nil {
			logrus.Fatalf("could not load configuration, %v", err)
		}
	}

	log := newLogger(*verbose, os.Stderr)

	os.Exit(int(subcommands.Execute(context.Background(), conf, log)))
}

// newLogger returns the simulator logger, verbose logging includes the
// per-peripheral assignment records.
func newLogger(verbose bool, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&util.WorldLog{Secure: true, Output: w})

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
