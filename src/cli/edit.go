package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"openclaw-manager/src/config"
)

func newEditCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "edit NAME KEY VALUE",
		Short: "Set a config value (dot notation, e.g. agents.defaults.model.primary)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, key, value := args[0], args[1], args[2]
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			inst, err := e.Registry.Get(name)
			if err != nil {
				return err
			}
			doc, err := config.LoadFile(inst.ConfigPath)
			if err != nil {
				return err
			}
			if err := config.Set(doc, key, value); err != nil {
				return err
			}
			if getSafetyOptions(cmd).DryRun {
				fmt.Fprintf(stdout, "Would set %s = %s in %s\n", key, value, inst.ConfigPath)
				return nil
			}
			if err := config.WriteFile(inst.ConfigPath, doc); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Updated %s = %s\n", key, value)

			// A running gateway only rereads its config on restart.
			service := e.Layout.ServiceName(name)
			if state, _ := e.Systemd.IsActive(service); state == "active" {
				fmt.Fprintln(stdout, "Restarting service...")
				if err := e.Systemd.Restart(service); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
