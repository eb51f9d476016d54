package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func themeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			_, theme := localState(a)
			ctx := cmd.Context()

			var current string
			switch {
			case len(args) == 0:
				current, err = theme.Get(ctx)
			case args[0] == "toggle":
				current, err = theme.Toggle(ctx)
			default:
				current = args[0]
				err = theme.Set(ctx, current)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), current)
			return nil
		},
	}
}

func starCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "star <feedback-id>",
		Short: "Star or unstar a feedback item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			starred, _ := localState(a)
			on, err := starred.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintf(cmd.OutOrStdout(), "Starred %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Unstarred %s\n", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(
		starSetCmd(g, "add", "Star a feedback item", true),
		starSetCmd(g, "remove", "Unstar a feedback item", false),
	)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List starred feedback ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			starred, _ := localState(a)
			ids, err := starred.List(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), g, ids, func() string {
				return formatStarred(ids)
			})
		},
	})
	return cmd
}

func starSetCmd(g *globalFlags, use, short string, on bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <feedback-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			starred, _ := localState(a)
			if on {
				err = starred.Add(cmd.Context(), args[0])
			} else {
				err = starred.Remove(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			ids, err := starred.List(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), g, ids, func() string {
				return formatStarred(ids)
			})
		},
	}
}
