package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/auth"
	"github.com/bobmcallan/feedpulse/internal/client"
	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/models"
)

var errNotLoggedIn = errors.New("not logged in; run `feedpulse login`")

func loginCmd(g *globalFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Client.Login(cmd.Context(), models.LoginRequest{Email: email, Password: password})
			if errors.Is(err, client.ErrUnauthorized) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return err
			}
			if err := a.Session.SetToken(cmd.Context(), resp.AccessToken); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), g, resp.User, func() string {
				return formatSignedIn(&resp.User, resp.AccessToken)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func signupCmd(g *globalFlags) *cobra.Command {
	var req models.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and organisation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				p, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				req.Password = p
			}

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Client.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.Session.SetToken(cmd.Context(), resp.AccessToken); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), g, resp.User, func() string {
				return formatSignedIn(&resp.User, resp.AccessToken)
			})
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&req.FullName, "name", "", "your full name")
	cmd.Flags().StringVar(&req.OrgName, "org", "", "organisation name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Session.ClearToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func whoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Session.IsAuthenticated(cmd.Context()) {
				return errNotLoggedIn
			}
			user, err := a.Client.Me(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			token := a.Session.Token(cmd.Context())
			return emit(cmd.OutOrStdout(), g, user, func() string {
				return formatSignedIn(user, token)
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			common.LoadVersionFromFile()
			fmt.Fprintln(cmd.OutOrStdout(), common.Info())
		},
	}
}

// sessionError turns a 401 into the login hint; the client has already
// cleared the rejected token.
func sessionError(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("session expired; run `feedpulse login`")
	}
	return err
}

func readLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func tokenExpiry(token string) string {
	if exp, ok := auth.Expiry(token); ok {
		return exp.Local().Format("2006-01-02 15:04")
	}
	return ""
}
