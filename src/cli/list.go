package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type listRow struct {
	Name      string `json:"name"`
	Port      int    `json:"port"`
	Status    string `json:"status"`
	Autostart string `json:"autostart"`
	Model     string `json:"model"`
	Config    string `json:"config,omitempty"`
	State     string `json:"state,omitempty"`
	Service   string `json:"service,omitempty"`
}

func newListCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instances",
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
			rows := make([]listRow, 0, len(instances))
			for _, inst := range instances {
				service := e.Layout.ServiceName(inst.Name)
				state, _ := e.Systemd.IsActive(service)
				enabled, _ := e.Systemd.IsEnabled(service)
				autostart := "disabled"
				if enabled {
					autostart = "enabled"
				}
				model := inst.Model
				if model == "" {
					model = "default"
				}
				row := listRow{
					Name:      inst.Name,
					Port:      inst.Port,
					Status:    state,
					Autostart: autostart,
					Model:     model,
				}
				if verbose {
					row.Config = inst.ConfigPath
					row.State = inst.StateDir
					row.Service = service
				}
				rows = append(rows, row)
			}
			switch output {
			case "json":
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			case "table", "":
				if len(rows) == 0 {
					fmt.Fprintln(stdout, "No instances found")
					return nil
				}
				return renderListTable(stdout, rows, verbose)
			default:
				return fmt.Errorf("unsupported --output: %s", output)
			}
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show per-instance paths")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func renderListTable(w io.Writer, rows []listRow, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE\tPORT\tSTATUS\tAUTOSTART\tMODEL")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.Name, r.Port, r.Status, r.Autostart, r.Model)
		if verbose {
			fmt.Fprintf(tw, "  config: %s\t\t\t\t\n", r.Config)
			fmt.Fprintf(tw, "  state: %s\t\t\t\t\n", r.State)
			fmt.Fprintf(tw, "  service: %s\t\t\t\t\n", r.Service)
		}
	}
	return tw.Flush()
}
