package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func onboardingCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Product setup wizard",
	}
	cmd.AddCommand(
		onboardingStatusCmd(g),
		onboardingCompleteCmd(g),
		onboardingContextCmd(g),
		onboardingWizardCmd(g),
	)
	return cmd
}

func onboardingStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which wizard sections are done",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Onboarding.Status(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, st, func() string {
				return formatOnboarding(st)
			})
		},
	}
}

func onboardingCompleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Mark onboarding finished",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Onboarding.Complete(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, st, func() string {
				return formatOnboarding(st)
			})
		},
	}
}

func onboardingContextCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Print the product context the agent sees",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			pc, err := a.Onboarding.Context(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			opts := a.Onboarding.Options(cmd.Context())
			return emit(cmd.OutOrStdout(), g, pc, func() string {
				return formatProductContext(pc, opts.Areas, opts.Segments)
			})
		},
	}
}

func onboardingWizardCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Read, write or clear one wizard section",
	}

	getCmd := &cobra.Command{
		Use:   "get <section>",
		Short: "Print a section as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			ws, err := a.Onboarding.Section(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ws)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <section> <file.json>",
		Short: "Save a section from a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Onboarding.SaveSection(cmd.Context(), args[0], data); err != nil {
				return sessionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", args[0])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <section>",
		Short: "Delete a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Onboarding.ClearSection(cmd.Context(), args[0]); err != nil {
				return sessionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(getCmd, setCmd, clearCmd)
	return cmd
}
