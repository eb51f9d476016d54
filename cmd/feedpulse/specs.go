package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/services/specs"
)

func specsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "specs",
		Aliases: []string{"spec"},
		Short:   "Generate and manage product specs",
	}
	cmd.AddCommand(
		specsListCmd(g),
		specsGetCmd(g),
		specsGenerateCmd(g),
		specsUpdateCmd(g),
		specsRegenerateCmd(g),
		specsDeleteCmd(g),
		specsDownloadCmd(g),
	)
	return cmd
}

func specsListCmd(g *globalFlags) *cobra.Command {
	var p models.SpecListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List specs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Specs.List(cmd.Context(), p)
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, list, func() string {
				return formatSpecList(list)
			})
		},
	}

	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 20, "page size")
	cmd.Flags().StringVar(&p.ProductArea, "area", "", "product area")
	cmd.Flags().StringVar(&p.Status, "status", "", "draft, final or shared")
	cmd.Flags().StringVar(&p.DateFrom, "from", "", "created on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&p.DateTo, "to", "", "created on or before YYYY-MM-DD")
	cmd.Flags().StringVar(&p.CustomerID, "customer", "", "linked customer id")
	return cmd
}

func specsGetCmd(g *globalFlags) *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			spec, err := a.Specs.Get(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}
			if section != "" {
				f, err := specs.SectionFile(spec, section)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(f.Data)
				return err
			}
			return emit(cmd.OutOrStdout(), g, spec, func() string {
				return formatSpec(spec)
			})
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "print only prd, architecture, rules or plan")
	return cmd
}

func specsGenerateCmd(g *globalFlags) *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a spec from the feedback on a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Specs.Generate(cmd.Context(), args[0], area)
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, resp, func() string {
				return fmt.Sprintf("Generated **%s** (`%s`) from %d feedback items across %d customers.\n",
					resp.Title, resp.ID, resp.FeedbackCount, resp.CustomerCount)
			})
		},
	}
	cmd.Flags().StringVar(&area, "area", "", "restrict to one product area")
	return cmd
}

func specsUpdateCmd(g *globalFlags) *cobra.Command {
	var title, status, section, file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a spec's title, status or one section",
		Long:  "Content edits (title or a section) are only allowed while the spec is a draft. Status can always change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (section == "") != (file == "") {
				return fmt.Errorf("--section and --file go together")
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			id := args[0]
			var spec *models.Spec
			if section != "" {
				content, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if spec, err = a.Specs.EditSection(cmd.Context(), id, section, string(content)); err != nil {
					return sessionError(err)
				}
			}

			req := models.UpdateSpecRequest{}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			if req.Title != nil || req.Status != nil {
				if spec, err = a.Specs.Update(cmd.Context(), id, req); err != nil {
					return sessionError(err)
				}
			}
			if spec == nil {
				return fmt.Errorf("nothing to update")
			}
			return emit(cmd.OutOrStdout(), g, spec, func() string {
				return fmt.Sprintf("Updated **%s** (`%s`), status %s.\n", spec.Title, spec.ID, spec.Status)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&status, "status", "", "draft, final or shared")
	cmd.Flags().StringVar(&section, "section", "", "section to replace: prd, architecture, rules or plan")
	cmd.Flags().StringVar(&file, "file", "", "markdown file with the new section content")
	return cmd
}

func specsRegenerateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <id>",
		Short: "Regenerate a spec from current feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			spec, err := a.Specs.Regenerate(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, spec, func() string {
				return formatSpec(spec)
			})
		},
	}
}

func specsDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Client.DeleteSpec(cmd.Context(), args[0]); err != nil {
				return sessionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted spec %s\n", args[0])
			return nil
		},
	}
}

func specsDownloadCmd(g *globalFlags) *cobra.Command {
	var section, dir string
	var asExport bool

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a spec as a zip of its sections, one section, or a single markdown export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			spec, err := a.Specs.Get(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}

			var f *specs.File
			switch {
			case section != "":
				f, err = specs.SectionFile(spec, section)
			case asExport:
				f, err = specs.Export(spec, time.Now())
			default:
				f, err = specs.Archive(spec)
			}
			if err != nil {
				return err
			}

			path := filepath.Join(dir, f.Name)
			if err := os.WriteFile(path, f.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "download only prd, architecture, rules or plan")
	cmd.Flags().BoolVar(&asExport, "export", false, "one markdown file with front matter")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}
