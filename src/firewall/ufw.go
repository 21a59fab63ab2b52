package firewall

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"
)

// UFW shells out to the ufw binary through sudo.
type UFW struct {
	// Sudo prefixes commands with sudo; rules require root.
	Sudo bool
}

func NewUFW() *UFW { return &UFW{Sudo: true} }

var _ Manager = (*UFW)(nil)

func (u *UFW) Available() bool {
	_, err := exec.LookPath("ufw")
	return err == nil
}

func (u *UFW) Enabled() (bool, error) {
	stdout, stderr, err := u.run("status")
	if err != nil {
		return false, &CommandError{Command: "ufw status", Stderr: stderr, Err: err}
	}
	return strings.Contains(stdout, "Status: active"), nil
}

func (u *UFW) Allow(port int, comment string) error {
	_, stderr, err := u.run("allow", strconv.Itoa(port), "comment", comment)
	if err != nil {
		return &CommandError{Command: "ufw allow " + strconv.Itoa(port), Stderr: stderr, Err: err}
	}
	return nil
}

func (u *UFW) Deny(port int) error {
	// ufw handles both IPv4 and IPv6 rules for the port.
	_, stderr, err := u.run("delete", "allow", strconv.Itoa(port))
	if err != nil {
		if strings.Contains(stderr, "Could not delete non-existent rule") {
			return nil
		}
		return &CommandError{Command: "ufw delete allow " + strconv.Itoa(port), Stderr: stderr, Err: err}
	}
	return nil
}

func (u *UFW) run(args ...string) (string, string, error) {
	bin := "ufw"
	if u.Sudo {
		args = append([]string{"ufw"}, args...)
		bin = "sudo"
	}
	cmd := exec.Command(bin, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	return stdoutBuf.String(), strings.TrimSpace(stderrBuf.String()), err
}
