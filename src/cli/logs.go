package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newLogsCmd(stdout io.Writer) *cobra.Command {
	var follow bool
	var lines int
	cmd := &cobra.Command{
		Use:   "logs NAME",
		Short: "Show instance logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			e, err := newEnv(stdout)
			if err != nil {
				return err
			}
			if _, err := e.Registry.Get(name); err != nil {
				return err
			}
			return e.Systemd.Logs(cmd.Context(), e.Layout.ServiceName(name), follow, lines, stdout)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 100, "Number of recent lines to show")
	return cmd
}
