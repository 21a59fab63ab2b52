package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"openclaw-manager/src/lifecycle"
)

func newCreateCmd(stdout, stderr io.Writer) *cobra.Command {
	var port int
	var model string
	var start bool
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new OpenClaw instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			opts := getSafetyOptions(cmd)
			if opts.DryRun {
				used, err := e.Registry.UsedPorts()
				if err != nil {
					return err
				}
				p := port
				if p == 0 {
					if p, err = e.Orch.Allocator.Allocate(used); err != nil {
						return err
					}
				}
				fmt.Fprintf(stdout, "Would create instance %q on port %d\n", name, p)
				return nil
			}
			inst, err := e.Orch.Create(name, lifecycle.CreateOptions{
				Port:  port,
				Model: model,
				Start: start,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Instance %q created\n", inst.Name)
			fmt.Fprintf(stdout, "  Port:    %d\n", inst.Port)
			fmt.Fprintf(stdout, "  Config:  %s\n", inst.ConfigPath)
			fmt.Fprintf(stdout, "  State:   %s\n", inst.StateDir)
			fmt.Fprintf(stdout, "  Service: %s\n", e.Layout.ServiceName(inst.Name))
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Custom port (auto-assigned if not specified)")
	cmd.Flags().StringVar(&model, "model", "", "Default model for the instance")
	cmd.Flags().BoolVar(&start, "start", false, "Start the service immediately")
	return cmd
}
