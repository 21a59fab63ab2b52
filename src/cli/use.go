package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"openclaw-manager/src/gateway"
)

func newUseCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME [-- ARGS...]",
		Short: "Run an openclaw command in an instance's context",
		Args:  cobra.MinimumNArgs(1),
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
			fmt.Fprintf(stderr, "Running in context of %q (config %s)\n", name, inst.ConfigPath)
			return gateway.Run(cmd.Context(), e.Layout, inst, args[1:], gateway.Stdio{
				In:  os.Stdin,
				Out: stdout,
				Err: stderr,
			})
		},
	}
}

func newEnterCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "enter NAME",
		Short: "Enter an interactive shell in an instance's context",
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
			fmt.Fprintf(stdout, "Entering instance %q (type 'exit' to leave)\n", name)
			return gateway.Shell(cmd.Context(), e.Layout, inst, gateway.Stdio{
				In:  os.Stdin,
				Out: stdout,
				Err: stderr,
			})
		},
	}
}
