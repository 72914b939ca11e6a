// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package config implements loading of the Secure Partition Manager
// integration parameters from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/usbarmory/nrf-spm/mem"
	"github.com/usbarmory/nrf-spm/spm"
)

// NSC represents the Non-secure Callable area configuration.
type NSC struct {
	// Memory is either "flash" or "ram".
	Memory string `toml:"memory" yaml:"memory"`
	Region int    `toml:"region" yaml:"region"`
	Size   Size   `toml:"size" yaml:"size"`
}

// Header represents a Non-secure image header, used by the simulator when
// no image is given.
type Header struct {
	StackPointer uint32 `toml:"stack_pointer" yaml:"stack_pointer"`
	ResetHandler uint32 `toml:"reset_handler" yaml:"reset_handler"`
}

// Config represents the integration parameters.
type Config struct {
	SecureFlashSize Size `toml:"secure_flash_size" yaml:"secure_flash_size"`
	SecureRAMSize   Size `toml:"secure_ram_size" yaml:"secure_ram_size"`

	Lock          bool `toml:"lock" yaml:"lock"`
	ICache        bool `toml:"icache" yaml:"icache"`
	NonSecureDPPI bool `toml:"nonsecure_dppi" yaml:"nonsecure_dppi"`
	NonSecureGPIO bool `toml:"nonsecure_gpio" yaml:"nonsecure_gpio"`

	NSC *NSC `toml:"nsc" yaml:"nsc"`

	// Image is the path of the Non-secure image (ELF or raw binary).
	Image  string  `toml:"image" yaml:"image"`
	Header *Header `toml:"header" yaml:"header"`
}

// Default returns the default configuration.
func Default() *Config {
	opts := spm.DefaultOptions()

	return &Config{
		SecureFlashSize: Size(opts.Layout.SecureFlashSize),
		SecureRAMSize:   Size(opts.Layout.SecureRAMSize),
		Lock:            opts.Lock,
		ICache:          opts.ICache,
		NonSecureDPPI:   opts.NonSecureDPPI,
		NonSecureGPIO:   opts.NonSecureGPIO,
	}
}

// Load reads a configuration file, the format is selected by its extension
// (.toml, .yaml or .yml). Parameters not present in the file retain their
// default value.
func Load(path string) (c *Config, err error) {
	c = Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var md toml.MetaData

		if md, err = toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("could not parse %s, %v", path, err)
		}

		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("unknown keys in %s: %v", path, keys)
		}
	case ".yaml", ".yml":
		var f *os.File

		if f, err = os.Open(path); err != nil {
			return
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)

		if err = dec.Decode(c); err != nil {
			return nil, fmt.Errorf("could not parse %s, %v", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", ext)
	}

	if c.Image != "" && !filepath.IsAbs(c.Image) {
		c.Image = filepath.Join(filepath.Dir(path), c.Image)
	}

	return c, c.Validate()
}

// ParseKind parses a memory type name.
func ParseKind(s string) (mem.Kind, error) {
	switch strings.ToLower(s) {
	case "flash", "":
		return mem.Flash, nil
	case "ram":
		return mem.RAM, nil
	default:
		return 0, fmt.Errorf("invalid memory %q", s)
	}
}

// Layout returns the memory boundaries.
func (c *Config) Layout() mem.Layout {
	return mem.Layout{
		SecureFlashSize: uint32(c.SecureFlashSize),
		SecureRAMSize:   uint32(c.SecureRAMSize),
	}
}

// Options converts the configuration to partition manager boot options.
func (c *Config) Options() (opts spm.Options, err error) {
	opts = spm.Options{
		Layout:        c.Layout(),
		Lock:          c.Lock,
		ICache:        c.ICache,
		NonSecureDPPI: c.NonSecureDPPI,
		NonSecureGPIO: c.NonSecureGPIO,
	}

	if c.NSC != nil {
		var k mem.Kind

		if k, err = ParseKind(c.NSC.Memory); err != nil {
			return
		}

		opts.NSC = &spm.NSC{
			Kind:   k,
			Region: c.NSC.Region,
			Size:   uint32(c.NSC.Size),
		}
	}

	return
}

// Validate returns an error if the configuration cannot be applied.
func (c *Config) Validate() error {
	opts, err := c.Options()

	if err != nil {
		return err
	}

	if err = opts.Validate(); err != nil {
		return err
	}

	if c.Image != "" && c.Header != nil {
		return errors.New("image and header are mutually exclusive")
	}

	return nil
}
