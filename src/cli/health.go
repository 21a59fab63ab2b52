package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newHealthCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Health-check all instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			instances, err := e.Registry.List()
			if err != nil {
				return err
			}
			if len(instances) == 0 {
				fmt.Fprintln(stdout, "No instances found")
				return nil
			}
			unhealthy := 0
			for _, inst := range instances {
				state, _ := e.Systemd.IsActive(e.Layout.ServiceName(inst.Name))
				if state == "active" {
					fmt.Fprintf(stdout, "ok   %s (port %d)\n", inst.Name, inst.Port)
				} else {
					fmt.Fprintf(stdout, "FAIL %s: %s (port %d)\n", inst.Name, state, inst.Port)
					unhealthy++
				}
			}
			if unhealthy > 0 {
				return fmt.Errorf("%d of %d instance(s) unhealthy", unhealthy, len(instances))
			}
			return nil
		},
	}
}
