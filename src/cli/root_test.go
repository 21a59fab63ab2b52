package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"openclaw-manager/src/cli"
	"openclaw-manager/src/version"
)

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := cli.NewRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootHelp(t *testing.T) {
	stdout, _, err := runCmd(t, "--help")
	if err != nil {
		t.Fatalf("--help: %v", err)
	}
	if !strings.Contains(stdout, "Usage:") || !strings.Contains(stdout, "ocm") {
		t.Fatalf("help output missing usage:\n%s", stdout)
	}
	for _, sub := range []string{"create", "delete", "list", "start", "stop", "restart", "status", "logs", "health", "backup", "restore", "use", "enter"} {
		if !strings.Contains(stdout, sub) {
			t.Fatalf("help output missing %q command:\n%s", sub, stdout)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(stdout) != version.Version {
		t.Fatalf("version output = %q, want %q", stdout, version.Version)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := runCmd(t, "frobnicate")
	if err == nil {
		t.Fatalf("unknown command accepted")
	}
}

func TestCreateRequiresName(t *testing.T) {
	_, _, err := runCmd(t, "create")
	if err == nil {
		t.Fatalf("create without a name accepted")
	}
}

func TestDeleteRequiresName(t *testing.T) {
	_, _, err := runCmd(t, "delete")
	if err == nil {
		t.Fatalf("delete without a name accepted")
	}
}

func TestEditRequiresKeyValue(t *testing.T) {
	_, _, err := runCmd(t, "edit", "worker1")
	if err == nil {
		t.Fatalf("edit without key/value accepted")
	}
}
