// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package config handles the application manifest found inside the cv
// package directory: which commands to watch, sampling parameters, the
// procfs mount and the remote hosts known to the tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultCommands are the binaries watched when no command is configured.
var DefaultCommands = []string{"cp", "mv", "dd", "tar", "gzip", "gunzip", "cat", "grep", "fgrep", "egrep", "cut", "sort", "rsync"}

const (
	DefaultWaitDelay   = 1
	DefaultMaxPIDs     = 32
	DefaultMaxFDPerPID = 512
	DefaultSampleSize  = 3
	DefaultProcRoot    = "/proc"
	DefaultServeAddr   = "127.0.0.1:8080"
)

// SSHHost is a remote machine on which cv can be run over SSH.
type SSHHost struct {
	// Name is the identifier used with --host
	Name string `yaml:"name" toml:"name"`

	// Hostname is the server address (IP or domain)
	Hostname string `yaml:"hostname" toml:"hostname"`

	User string `yaml:"user" toml:"user"`

	// Port defaults to 22
	Port int `yaml:"port,omitempty" toml:"port,omitempty"`

	// KeyPath is the path to the SSH private key file
	KeyPath string `yaml:"key_path,omitempty" toml:"key_path,omitempty"`

	// Binary is the cv executable on the remote side, "cv" if empty
	Binary string `yaml:"binary,omitempty" toml:"binary,omitempty"`

	Disabled bool `yaml:"disabled,omitempty" toml:"disabled,omitempty"`
}

// Config is the manifest content.
type Config struct {
	Commands    []string  `yaml:"commands,omitempty" toml:"commands,omitempty"`
	WaitDelay   int       `yaml:"wait_delay,omitempty" toml:"wait_delay,omitempty"`
	MaxPIDs     int       `yaml:"max_pids,omitempty" toml:"max_pids,omitempty"`
	MaxFDPerPID int       `yaml:"max_fd_per_pid,omitempty" toml:"max_fd_per_pid,omitempty"`
	SampleSize  int       `yaml:"sample_size,omitempty" toml:"sample_size,omitempty"`
	ProcRoot    string    `yaml:"proc_root,omitempty" toml:"proc_root,omitempty"`
	ServeAddr   string    `yaml:"serve_addr,omitempty" toml:"serve_addr,omitempty"`
	SSHHosts    []SSHHost `yaml:"ssh_hosts,omitempty" toml:"ssh_hosts,omitempty"`
}

// Default returns the configuration used when the manifest is empty.
func Default() Config {
	return Config{
		Commands:    slices.Clone(DefaultCommands),
		WaitDelay:   DefaultWaitDelay,
		MaxPIDs:     DefaultMaxPIDs,
		MaxFDPerPID: DefaultMaxFDPerPID,
		SampleSize:  DefaultSampleSize,
		ProcRoot:    DefaultProcRoot,
		ServeAddr:   DefaultServeAddr,
	}
}

// WaitDuration is WaitDelay as a time.Duration.
func (c Config) WaitDuration() time.Duration {
	return time.Duration(c.WaitDelay) * time.Second
}

// Load reads a manifest. The format is chosen by extension: .toml is parsed
// as TOML, anything else as YAML. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if len(c.Commands) == 0 {
		c.Commands = d.Commands
	}
	if c.WaitDelay == 0 {
		c.WaitDelay = d.WaitDelay
	}
	if c.MaxPIDs == 0 {
		c.MaxPIDs = d.MaxPIDs
	}
	if c.MaxFDPerPID == 0 {
		c.MaxFDPerPID = d.MaxFDPerPID
	}
	if c.SampleSize == 0 {
		c.SampleSize = d.SampleSize
	}
	if c.ProcRoot == "" {
		c.ProcRoot = d.ProcRoot
	}
	if c.ServeAddr == "" {
		c.ServeAddr = d.ServeAddr
	}
	c.SSHHosts = slices.DeleteFunc(c.SSHHosts, func(h SSHHost) bool {
		return h.Disabled
	})
}

// Validate rejects values the scanner cannot work with.
func (c Config) Validate() error {
	switch {
	case c.WaitDelay < 0:
		return fmt.Errorf("wait_delay must be non-negative, got %d", c.WaitDelay)
	case c.MaxPIDs < 0:
		return fmt.Errorf("max_pids must be non-negative, got %d", c.MaxPIDs)
	case c.MaxFDPerPID < 0:
		return fmt.Errorf("max_fd_per_pid must be non-negative, got %d", c.MaxFDPerPID)
	case c.SampleSize < 0:
		return fmt.Errorf("sample_size must be non-negative, got %d", c.SampleSize)
	}
	seen := make(map[string]bool)
	for _, h := range c.SSHHosts {
		if h.Name == "" {
			return fmt.Errorf("ssh host with hostname %q has no name", h.Hostname)
		}
		if seen[h.Name] {
			return fmt.Errorf("duplicate ssh host name %q", h.Name)
		}
		seen[h.Name] = true
	}
	return nil
}

// Host returns the configured host with the given name.
func (c Config) Host(name string) (SSHHost, bool) {
	for _, h := range c.SSHHosts {
		if h.Name == name {
			return h, true
		}
	}
	return SSHHost{}, false
}

// Marshal encodes the configuration in the format implied by path.
func Marshal(cfg Config, path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}

func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
