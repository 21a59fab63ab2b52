package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"openclaw-manager/src/safety"
)

func newDeleteCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an instance and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			// Not-found is reported before any prompt or side effect.
			if _, err := e.Registry.Get(name); err != nil {
				return err
			}
			opts := getSafetyOptions(cmd)
			if opts.DryRun {
				fmt.Fprintf(stdout, "Would delete instance %q (service, firewall rule, config, state)\n", name)
				return nil
			}
			ok, err := safety.Confirm(opts, os.Stdin, stdout,
				fmt.Sprintf("Delete instance %q? This cannot be undone", name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(stdout, "Cancelled")
				return nil
			}
			if err := e.Orch.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Instance %q deleted\n", name)
			return nil
		},
	}
	return cmd
}
