// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// PotentialHost is a host alias read from an OpenSSH client config.
type PotentialHost struct {
	Alias    string
	Hostname string
	User     string
	Port     int
	KeyPath  string
}

func DefaultSSHConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ssh", "config"), nil
}

// ParseSSHConfig reads ~/.ssh/config. A missing file yields no hosts.
func ParseSSHConfig() ([]PotentialHost, error) {
	sshConfigPath, err := DefaultSSHConfigPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(sshConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []PotentialHost{}, nil
		}
		return nil, fmt.Errorf("failed to open ssh config file %s: %w", sshConfigPath, err)
	}
	defer f.Close()

	hosts, err := DecodeSSHConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh config file %s: %w", sshConfigPath, err)
	}
	return hosts, nil
}

// DecodeSSHConfig extracts concrete host aliases (no wildcards) from an
// OpenSSH client config. HostName defaults to the alias and User to the
// current user.
func DecodeSSHConfig(r io.Reader) ([]PotentialHost, error) {
	cfg, err := ssh_config.Decode(r)
	if err != nil {
		return nil, err
	}

	var potentialHosts []PotentialHost
	for _, host := range cfg.Hosts {
		if len(host.Patterns) == 0 {
			continue
		}
		alias := host.Patterns[0].String()
		if strings.ContainsAny(alias, "*?!") {
			continue
		}

		hostname, _ := cfg.Get(alias, "HostName")
		user, _ := cfg.Get(alias, "User")
		portStr, _ := cfg.Get(alias, "Port")
		keyPath, _ := cfg.Get(alias, "IdentityFile")

		if hostname == "" {
			hostname = alias
		}
		if user == "" {
			user = os.Getenv("USER")
		}

		port := 22
		if portStr != "" {
			if p, err := strconv.Atoi(portStr); err == nil {
				port = p
			}
		}

		if resolved, err := ResolvePath(keyPath); err == nil {
			keyPath = resolved
		}

		potentialHosts = append(potentialHosts, PotentialHost{
			Alias:    alias,
			Hostname: hostname,
			User:     user,
			Port:     port,
			KeyPath:  keyPath,
		})
	}
	return potentialHosts, nil
}

// ToSSHHost converts an imported alias into a host entry named after it.
func (p PotentialHost) ToSSHHost() (SSHHost, error) {
	if p.Hostname == "" || p.User == "" {
		return SSHHost{}, fmt.Errorf("ssh config host '%s' has no hostname or user", p.Alias)
	}
	return SSHHost{
		Name:     p.Alias,
		Hostname: p.Hostname,
		User:     p.User,
		Port:     p.Port,
		KeyPath:  p.KeyPath,
	}, nil
}

// LookupHost finds a host by name, first in the manifest and then in
// ~/.ssh/config.
func (c Config) LookupHost(name string) (SSHHost, error) {
	if h, ok := c.Host(name); ok {
		return h, nil
	}
	potential, err := ParseSSHConfig()
	if err != nil {
		return SSHHost{}, err
	}
	for _, p := range potential {
		if p.Alias == name {
			return p.ToSSHHost()
		}
	}
	return SSHHost{}, fmt.Errorf("host '%s' not found in configuration or ~/.ssh/config", name)
}
