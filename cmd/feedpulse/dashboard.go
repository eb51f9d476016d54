package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/app"
	"github.com/bobmcallan/feedpulse/internal/services/dashboard"
)

func newDashboard(a *app.App) *dashboard.Service {
	d := dashboard.NewService(a.Client, a.Client, a.Client, a.Config.Dashboard, a.Logger)
	d.Loader().SetObserver(a.Metrics.ObserveSlice)
	return d
}

func dashboardCmd(g *globalFlags) *cobra.Command {
	var period, from, to, chartSlice, out string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the analytics dashboard for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			d := newDashboard(a)
			if period == "" {
				period = a.Config.Dashboard.DefaultPeriod
			}
			v := d.Load(cmd.Context(), d.Resolve(period, from, to))
			if failed := v.Failed(); len(failed) == len(v.Slices) && len(failed) > 0 {
				return sessionError(v.Slices[failed[0]].Err)
			}

			if chartSlice != "" {
				format := strings.TrimPrefix(filepath.Ext(out), ".")
				data, err := dashboard.Chart(v.Dashboard, chartSlice, format)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
			}

			return emit(cmd.OutOrStdout(), g, v, func() string {
				return formatDashboard(v)
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "7d, 30d, 90d or custom")
	cmd.Flags().StringVar(&from, "from", "", "custom period start YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "custom period end YYYY-MM-DD")
	cmd.Flags().StringVar(&chartSlice, "chart", "", "also render a slice chart: volume, sentiment, sources, areas or segments")
	cmd.Flags().StringVar(&out, "out", "chart.png", "chart output file, .png or .svg")

	cmd.AddCommand(dashboardWidgetsCmd(g))
	return cmd
}

func dashboardWidgetsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widgets [toggle <id>]",
		Short: "List visible widgets, or toggle one",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			d := newDashboard(a)
			var visible []string
			toggled := ""
			switch {
			case len(args) == 0:
				visible = d.Widgets(cmd.Context())
			case len(args) == 2 && args[0] == "toggle":
				toggled = args[1]
				visible, err = d.ToggleWidget(cmd.Context(), toggled)
				if err != nil {
					return sessionError(err)
				}
			default:
				return fmt.Errorf("usage: feedpulse dashboard widgets [toggle <id>]")
			}
			return emit(cmd.OutOrStdout(), g, visible, func() string {
				if toggled == "" {
					return formatWidgets(visible)
				}
				return formatToggled(toggled, visible) + formatWidgets(visible)
			})
		},
	}
	return cmd
}
