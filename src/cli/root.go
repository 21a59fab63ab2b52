package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd returns the root cobra command for the ocm CLI.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ocm",
		Short:         "Manage isolated OpenClaw gateway instances",
		Long:          "ocm creates, runs, and tears down isolated OpenClaw instances,\neach with its own state directory, config, port, and systemd user service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addGlobalFlags(cmd)

	cmd.AddCommand(newCreateCmd(stdout, stderr))
	cmd.AddCommand(newDeleteCmd(stdout, stderr))
	cmd.AddCommand(newEditCmd(stdout, stderr))
	cmd.AddCommand(newListCmd(stdout, stderr))
	cmd.AddCommand(newStartCmd(stdout))
	cmd.AddCommand(newStopCmd(stdout))
	cmd.AddCommand(newRestartCmd(stdout))
	cmd.AddCommand(newEnableCmd(stdout))
	cmd.AddCommand(newDisableCmd(stdout))
	cmd.AddCommand(newStatusCmd(stdout))
	cmd.AddCommand(newLogsCmd(stdout))
	cmd.AddCommand(newHealthCmd(stdout))
	cmd.AddCommand(newBackupCmd(stdout))
	cmd.AddCommand(newRestoreCmd(stdout, stderr))
	cmd.AddCommand(newUseCmd(stdout, stderr))
	cmd.AddCommand(newEnterCmd(stdout, stderr))
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

// Execute runs the CLI with the process stdio.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
