package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"openclaw-manager/src/lifecycle"
)

func newRestoreCmd(stdout, stderr io.Writer) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "restore ARCHIVE",
		Short: "Restore an instance from a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath := args[0]
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			opts := getSafetyOptions(cmd)
			if opts.DryRun {
				fmt.Fprintf(stdout, "Would restore instance from %s\n", archivePath)
				return nil
			}
			inst, err := e.Orch.Restore(archivePath, lifecycle.RestoreOptions{
				Name:    name,
				Replace: opts.Force,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Instance %q restored\n", inst.Name)
			fmt.Fprintf(stdout, "  Port:   %d\n", inst.Port)
			fmt.Fprintf(stdout, "  Config: %s\n", inst.ConfigPath)
			fmt.Fprintf(stdout, "  State:  %s\n", inst.StateDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "New instance name (default: from archive manifest)")
	return cmd
}
