package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newBackupCmd(stdout io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "backup NAME",
		Short: "Back up an instance to a tar.gz archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			if getSafetyOptions(cmd).DryRun {
				if _, err := e.Registry.Get(name); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Would back up instance %q\n", name)
				return nil
			}
			res, err := e.Orch.Backup(name, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Backup created: %s\n", res.Path)
			fmt.Fprintf(stdout, "  Size:   %.1f KB\n", float64(res.Size)/1024)
			fmt.Fprintf(stdout, "  SHA256: %s\n", res.SHA256)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <backup-dir>/<name>-<timestamp>.tar.gz)")
	return cmd
}
