package systemd

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// UnitParams is the dynamic part of a gateway service unit. The hardening
// directives are fixed; only names, paths, and the port vary per instance.
type UnitParams struct {
	InstanceName string
	ServiceName  string
	Port         int
	Home         string
	StateDir     string
	ConfigPath   string
	GatewayBin   string
}

const unitTemplate = `[Unit]
Description=OpenClaw Gateway - %[1]s
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart=%[2]s %[3]s --profile %[1]s gateway --port %[4]d
Restart=always
RestartSec=5
KillMode=process
Environment=HOME=%[5]s
Environment=PATH=%[6]s
Environment=OPENCLAW_GATEWAY_PORT=%[4]d
Environment=OPENCLAW_PROFILE=%[1]s
Environment=OPENCLAW_STATE_DIR=%[7]s
Environment=OPENCLAW_CONFIG_PATH=%[8]s
NoNewPrivileges=yes
PrivateTmp=yes
ProtectSystem=strict
ProtectHome=tmpfs
BindPaths=%[7]s
BindReadOnlyPaths=%[8]s %[3]s
RestrictSUIDSGID=yes
LockPersonality=yes

[Install]
WantedBy=default.target
`

// RenderUnit produces the service unit for an instance. The gateway runs
// under node, so ExecStart resolves the node binary at render time.
func RenderUnit(p UnitParams) Unit {
	return Unit{
		Name: p.ServiceName,
		Content: fmt.Sprintf(unitTemplate,
			p.InstanceName,
			nodePath(),
			p.GatewayBin,
			p.Port,
			p.Home,
			pathEnv(p.Home),
			p.StateDir,
			p.ConfigPath,
		),
	}
}

func nodePath() string {
	if p, err := exec.LookPath("node"); err == nil {
		return p
	}
	return "/usr/bin/node"
}

func pathEnv(home string) string {
	return strings.Join([]string{
		filepath.Join(home, ".npm-global", "bin"),
		filepath.Join(home, ".local", "bin"),
		"/usr/local/bin",
		"/usr/bin",
		"/bin",
	}, ":")
}
