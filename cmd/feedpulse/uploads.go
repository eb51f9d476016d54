package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/services/upload"
)

type importFlags struct {
	mappings    []string
	source      string
	noToday     bool
	noAreas     bool
	noSentiment bool
}

func (f *importFlags) addTo(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.mappings, "map", nil, "field=CSV column, e.g. --map text=Comment (repeatable)")
	cmd.Flags().StringVar(&f.source, "default-source", "", "source for rows without one")
	cmd.Flags().BoolVar(&f.noToday, "no-today", false, "leave undated rows without a date")
	cmd.Flags().BoolVar(&f.noAreas, "no-detect-areas", false, "skip product area detection")
	cmd.Flags().BoolVar(&f.noSentiment, "no-sentiment", false, "skip sentiment analysis")
}

func (f *importFlags) options() upload.Options {
	opts := upload.DefaultOptions()
	if f.source != "" {
		opts.DefaultSource = f.source
	}
	opts.UseTodayForDate = !f.noToday
	opts.AutoDetectAreas = !f.noAreas
	opts.AutoAnalyzeSentiment = !f.noSentiment
	return opts
}

// mapping parses --map flags. "field=" maps the field to nothing.
func (f *importFlags) mapping() (map[string]*string, error) {
	if len(f.mappings) == 0 {
		return nil, nil
	}
	out := make(map[string]*string, len(f.mappings))
	for _, m := range f.mappings {
		field, column, ok := strings.Cut(m, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --map %q, want field=column", m)
		}
		if column = strings.TrimSpace(column); column == "" {
			out[field] = nil
			continue
		}
		out[field] = &column
	}
	return out, nil
}

func uploadCmd(g *globalFlags) *cobra.Command {
	f := &importFlags{}

	cmd := &cobra.Command{
		Use:   "upload <feedback|customers> <file.csv>",
		Short: "Import a CSV of feedback or customers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := args[0], args[1]
			if _, err := upload.RequiredColumn(kind); err != nil {
				return err
			}
			overrides, err := f.mapping()
			if err != nil {
				return err
			}
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			outcome, err := a.Uploads.Upload(cmd.Context(), kind, filepath.Base(path), file, overrides, f.options())
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, outcome, func() string {
				return formatOutcome(outcome)
			})
		},
	}
	f.addTo(cmd)

	cmd.AddCommand(
		uploadConfirmCmd(g),
		uploadHistoryCmd(g),
		uploadShowCmd(g),
		uploadDeleteCmd(g),
	)
	return cmd
}

func uploadConfirmCmd(g *globalFlags) *cobra.Command {
	f := &importFlags{}

	cmd := &cobra.Command{
		Use:   "confirm <feedback|customers> <upload-id>",
		Short: "Finish a staged upload with an explicit column mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := f.mapping()
			if err != nil {
				return err
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Uploads.Confirm(cmd.Context(), args[0], args[1], mapping, f.options())
			if err != nil {
				return sessionError(err)
			}
			outcome := &upload.Outcome{Kind: args[0], UploadID: args[1], Result: result, Warning: upload.Warning(result)}
			return emit(cmd.OutOrStdout(), g, outcome, func() string {
				return formatOutcome(outcome)
			})
		},
	}
	f.addTo(cmd)
	return cmd
}

func uploadHistoryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Uploads.History(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, list, func() string {
				return formatUploads(list)
			})
		},
	}
}

func uploadShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <upload-id>",
		Short: "Show one upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Uploads.Get(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, rec, func() string {
				return formatUploadRecord(rec)
			})
		},
	}
}

func uploadDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <upload-id>",
		Short: "Delete an upload record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Client.DeleteUpload(cmd.Context(), args[0]); err != nil {
				return sessionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted upload %s\n", args[0])
			return nil
		},
	}
}
