package ssh

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"cv/internal/config"
)

func TestRunWithoutAuthMethods(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	m := NewManager()
	defer m.CloseAll()

	_, err := m.Run(context.Background(), config.SSHHost{Name: "nas", Hostname: "127.0.0.1", User: "backup"}, "cv")
	if err == nil || !strings.Contains(err.Error(), "no suitable authentication method") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunWithMissingKey(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	m := NewManager()
	defer m.CloseAll()

	host := config.SSHHost{Name: "nas", Hostname: "127.0.0.1", KeyPath: filepath.Join(t.TempDir(), "id_missing")}
	_, err := m.Run(context.Background(), host, "cv")
	if err == nil || !strings.Contains(err.Error(), "failed to read private key") {
		t.Fatalf("err = %v", err)
	}
}
