// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package ssh runs cv on remote hosts. It keeps one client per host so a
// monitor loop does not reconnect on every refresh.
package ssh

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"cv/internal/config"
	"cv/internal/logger"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

const dialTimeout = 10 * time.Second

// Manager caches SSH clients by host name. It is safe for concurrent use.
type Manager struct {
	clients map[string]*ssh.Client
	mu      sync.Mutex
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*ssh.Client),
	}
}

// GetClient returns a connected client for host, reusing a cached one while
// it still answers keepalives.
func (m *Manager) GetClient(ctx context.Context, host config.SSHHost) (*ssh.Client, error) {
	m.mu.Lock()
	client, found := m.clients[host.Name]
	if found {
		if _, _, err := client.SendRequest("keepalive@openssh.com", true, nil); err == nil {
			m.mu.Unlock()
			return client, nil
		}
		if err := client.Close(); err != nil {
			logger.Debug("Closing stale SSH client failed", "host", host.Name, "error", err)
		}
		delete(m.clients, host.Name)
	}
	m.mu.Unlock()

	newClient, err := dial(ctx, host)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another goroutine may have connected while we were dialing.
	if existing, found := m.clients[host.Name]; found {
		if err := newClient.Close(); err != nil {
			logger.Debug("Closing redundant SSH client failed", "host", host.Name, "error", err)
		}
		return existing, nil
	}
	m.clients[host.Name] = newClient
	return newClient, nil
}

func dial(ctx context.Context, host config.SSHHost) (*ssh.Client, error) {
	authMethods, err := authMethods(host)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare auth methods for %s: %w", host.Name, err)
	}
	if len(authMethods) == 0 {
		return nil, fmt.Errorf("no suitable authentication method found for %s (key or agent required)", host.Name)
	}

	hostKeyCallback, err := hostKeyCallback()
	if err != nil {
		return nil, err
	}

	clientConfig := &ssh.ClientConfig{
		User:            host.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         dialTimeout,
	}

	port := host.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(host.Hostname, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ssh host %s (%s): %w", host.Name, addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s (%s) failed: %w", host.Name, addr, err)
	}
	logger.Info("Connected to remote host", "host", host.Name, "addr", addr)
	return ssh.NewClient(c, chans, reqs), nil
}

// authMethods tries the configured key first, then the SSH agent.
func authMethods(host config.SSHHost) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if host.KeyPath != "" {
		keyPath, err := config.ResolvePath(host.KeyPath)
		if err != nil {
			keyPath = host.KeyPath
		}
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key file %s: %w", keyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			if _, ok := err.(*ssh.PassphraseMissingError); !ok {
				return nil, fmt.Errorf("failed to parse private key file %s: %w", keyPath, err)
			}
			logger.Warn("Private key is encrypted, relying on the agent", "key", keyPath)
		} else {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	return methods, nil
}

// hostKeyCallback verifies against ~/.ssh/known_hosts. Unlike interactive
// ssh there is no prompt, so an unknown host is an error.
func hostKeyCallback() (ssh.HostKeyCallback, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory for known_hosts: %w", err)
	}
	knownHostsPath := filepath.Join(homeDir, ".ssh", "known_hosts")
	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts file %s: %w", knownHostsPath, err)
	}
	return callback, nil
}

// Run executes command on host and returns its stdout. A non-zero exit
// status is returned as an error carrying the remote stderr.
func (m *Manager) Run(ctx context.Context, host config.SSHHost, command string) ([]byte, error) {
	client, err := m.GetClient(ctx, host)
	if err != nil {
		return nil, err
	}
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh session on %s: %w", host.Name, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGINT)
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				return nil, fmt.Errorf("remote command on %s failed: %w", host.Name, err)
			}
			return nil, fmt.Errorf("remote command on %s failed: %w: %s", host.Name, err, msg)
		}
		return stdout.Bytes(), nil
	}
}

// CloseAll closes every cached client.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			logger.Debug("Closing SSH client failed", "host", name, "error", err)
		}
		delete(m.clients, name)
	}
}
