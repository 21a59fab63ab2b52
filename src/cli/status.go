package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"openclaw-manager/src/config"
)

func newStatusCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status NAME",
		Short: "Show detailed instance status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			inst, err := e.Registry.Get(name)
			if err != nil {
				return err
			}
			service := e.Layout.ServiceName(name)
			state, _ := e.Systemd.IsActive(service)
			enabled, _ := e.Systemd.IsEnabled(service)
			autostart := "disabled"
			if enabled {
				autostart = "enabled"
			}

			fmt.Fprintf(stdout, "Instance: %s\n", inst.Name)
			fmt.Fprintf(stdout, "Port: %d\n", inst.Port)
			fmt.Fprintf(stdout, "Service status: %s\n", state)
			fmt.Fprintf(stdout, "Autostart: %s\n", autostart)
			if !inst.CreatedAt.IsZero() {
				fmt.Fprintf(stdout, "Created: %s\n", inst.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			}
			fmt.Fprintln(stdout, "\nPaths:")
			fmt.Fprintf(stdout, "  Config:  %s\n", inst.ConfigPath)
			fmt.Fprintf(stdout, "  State:   %s\n", inst.StateDir)
			fmt.Fprintf(stdout, "  Service: %s\n", e.Layout.UnitPath(name))

			doc, err := config.LoadFile(inst.ConfigPath)
			if err != nil {
				return nil
			}
			if model := config.StringAt(doc, "agents.defaults.model.primary"); model != "" {
				fmt.Fprintf(stdout, "\nModel: %s\n", model)
			}
			if providers, ok := doc["providers"].(map[string]any); ok && len(providers) > 0 {
				names := make([]string, 0, len(providers))
				for p := range providers {
					names = append(names, p)
				}
				sort.Strings(names)
				fmt.Fprintf(stdout, "Providers: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}
