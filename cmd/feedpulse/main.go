// Command feedpulse is the terminal client for the feedback analytics API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/app"
	"github.com/bobmcallan/feedpulse/internal/storage"
)

// cliScope is the storage scope for the local user's starred set and theme.
const cliScope = "cli"

type globalFlags struct {
	configPath string
	apiURL     string
	logLevel   string
	asJSON     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "feedpulse",
		Short:        "Customer feedback analytics from the terminal",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: FEEDPULSE_CONFIG or feedpulse.toml)")
	rootCmd.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "API base URL, e.g. https://api.example.com/api/v1")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().BoolVar(&g.asJSON, "json", false, "print raw JSON instead of markdown")

	rootCmd.AddCommand(
		loginCmd(g),
		signupCmd(g),
		logoutCmd(g),
		whoamiCmd(g),
		searchCmd(g),
		feedbackCmd(g),
		customersCmd(g),
		dashboardCmd(g),
		chatCmd(g),
		uploadCmd(g),
		specsCmd(g),
		onboardingCmd(g),
		themeCmd(g),
		starCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// openApp initializes the app in CLI mode. Callers must Close it.
func openApp(cmd *cobra.Command, g *globalFlags) (*app.App, error) {
	a, err := app.NewApp(cmd.Context(), app.Options{
		ConfigPath: g.configPath,
		Mode:       app.ModeCLI,
		APIURL:     g.apiURL,
		LogLevel:   g.logLevel,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// localState returns the starred set and theme kept for the CLI user.
func localState(a *app.App) (*storage.Starred, *storage.Theme) {
	kv := storage.NewScoped(a.Store, cliScope)
	return storage.NewStarred(kv, a.Logger), storage.NewTheme(kv)
}

// emit prints v as indented JSON when --json is set, otherwise the markdown.
func emit(w io.Writer, g *globalFlags, v any, markdown func() string) error {
	if g.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, markdown())
	return err
}
