package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// serviceAction builds one of the small commands that map directly onto a
// single systemd operation against a named instance.
func serviceAction(stdout io.Writer, use, short, doneVerb string, action func(e *env, service string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
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
			if getSafetyOptions(cmd).DryRun {
				fmt.Fprintf(stdout, "Would %s instance %q\n", use, name)
				return nil
			}
			if err := action(e, e.Layout.ServiceName(name)); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Instance %q %s\n", name, doneVerb)
			return nil
		},
	}
}

func newStartCmd(stdout io.Writer) *cobra.Command {
	return serviceAction(stdout, "start", "Start an instance", "started",
		func(e *env, service string) error { return e.Systemd.Start(service) })
}

func newStopCmd(stdout io.Writer) *cobra.Command {
	return serviceAction(stdout, "stop", "Stop an instance", "stopped",
		func(e *env, service string) error { return e.Systemd.Stop(service) })
}

func newRestartCmd(stdout io.Writer) *cobra.Command {
	return serviceAction(stdout, "restart", "Restart an instance", "restarted",
		func(e *env, service string) error { return e.Systemd.Restart(service) })
}

func newEnableCmd(stdout io.Writer) *cobra.Command {
	return serviceAction(stdout, "enable", "Enable instance autostart", "autostart enabled",
		func(e *env, service string) error { return e.Systemd.Enable(service) })
}

func newDisableCmd(stdout io.Writer) *cobra.Command {
	return serviceAction(stdout, "disable", "Disable instance autostart", "autostart disabled",
		func(e *env, service string) error { return e.Systemd.Disable(service) })
}
