package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/export"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/models"
	"github.com/bobmcallan/feedpulse/internal/widgets"
)

func customersCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "Browse customer accounts",
	}
	cmd.AddCommand(
		customersListCmd(g),
		customersShowCmd(g),
		customersSearchCmd(g),
		customersAddCmd(g),
		customersTrendCmd(g),
	)
	return cmd
}

func customersListCmd(g *globalFlags) *cobra.Command {
	var (
		search, segment, sort, order, xlsx   string
		healthMin, healthMax, arrMin, arrMax string
		renewal, hasNegative                 string
		page                                 int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := url.Values{}
			for key, val := range map[string]string{
				filters.KeyQuery:       search,
				filters.KeySegment:     segment,
				filters.KeySort:        sort,
				filters.KeyOrder:       order,
				filters.KeyHealthMin:   healthMin,
				filters.KeyHealthMax:   healthMax,
				filters.KeyARRMin:      arrMin,
				filters.KeyARRMax:      arrMax,
				filters.KeyRenewal:     renewal,
				filters.KeyHasNegative: hasNegative,
			} {
				if val != "" {
					v.Set(key, val)
				}
			}
			v.Set(filters.KeyPage, strconv.Itoa(page))

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Customers.List(cmd.Context(), filters.ParseCustomerState(v))
			if err != nil {
				return sessionError(err)
			}

			if xlsx != "" {
				items := make([]models.Customer, len(p.Items))
				for i, row := range p.Items {
					items[i] = row.Customer
				}
				data, err := export.Customers(items)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsx, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", xlsx, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(items), xlsx)
			}

			return emit(cmd.OutOrStdout(), g, p, func() string {
				return formatCustomerPage(p)
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "company name contains")
	cmd.Flags().StringVar(&segment, "segment", "", "segment")
	cmd.Flags().StringVar(&sort, "sort", "", "company_name, arr, health_score or renewal_date")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc")
	cmd.Flags().StringVar(&healthMin, "health-min", "", "minimum health score")
	cmd.Flags().StringVar(&healthMax, "health-max", "", "maximum health score")
	cmd.Flags().StringVar(&arrMin, "arr-min", "", "minimum ARR")
	cmd.Flags().StringVar(&arrMax, "arr-max", "", "maximum ARR")
	cmd.Flags().StringVar(&renewal, "renewal-within", "", "renewing within N days")
	cmd.Flags().StringVar(&hasNegative, "has-negative", "", "1 for accounts with negative feedback, 0 for none")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write the page to an Excel file")
	return cmd
}

func customersShowCmd(g *globalFlags) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a customer profile with its feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Customers.Profile(cmd.Context(), args[0], page)
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, p, func() string {
				return formatProfile(p)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "feedback page")
	return cmd
}

func customersSearchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Autocomplete customer names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.TrimSpace(args[0])
			if q == "" {
				return nil
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			matches, err := a.Client.SearchCustomers(cmd.Context(), q)
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, matches, func() string {
				return formatMatches(matches)
			})
		},
	}
}

func customersAddCmd(g *globalFlags) *cobra.Command {
	var req models.ManualCustomerRequest
	var mrr, arr, health float64
	var employees int

	cmd := &cobra.Command{
		Use:   "add <company name>",
		Short: "Add a customer by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.CompanyName = args[0]
			if cmd.Flags().Changed("mrr") {
				req.MRR = &mrr
			}
			if cmd.Flags().Changed("arr") {
				req.ARR = &arr
			}
			if cmd.Flags().Changed("health") {
				req.HealthScore = &health
			}
			if cmd.Flags().Changed("employees") {
				req.EmployeeCount = &employees
			}

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Manual.AddCustomer(cmd.Context(), req)
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, c, func() string {
				return fmt.Sprintf("Added customer **%s** (`%s`)\n", c.CompanyName, c.ID)
			})
		},
	}

	cmd.Flags().StringVar(&req.CustomerIDExternal, "external-id", "", "your CRM id")
	cmd.Flags().StringVar(&req.Segment, "segment", "", "segment")
	cmd.Flags().StringVar(&req.Plan, "plan", "", "plan")
	cmd.Flags().Float64Var(&mrr, "mrr", 0, "monthly recurring revenue")
	cmd.Flags().Float64Var(&arr, "arr", 0, "annual recurring revenue")
	cmd.Flags().StringVar(&req.AccountManager, "account-manager", "", "account manager")
	cmd.Flags().StringVar(&req.RenewalDate, "renewal", "", "renewal date YYYY-MM-DD")
	cmd.Flags().Float64Var(&health, "health", 0, "health score 0-100")
	cmd.Flags().StringVar(&req.Industry, "industry", "", "industry")
	cmd.Flags().IntVar(&employees, "employees", 0, "employee count")
	return cmd
}

func customersTrendCmd(g *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "trend <id>",
		Short: "Render a customer's sentiment trend to PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.TrimPrefix(filepath.Ext(out), ".")
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			trend, err := a.Customers.Trend(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}
			data, err := widgets.RenderSentimentTrend(trend, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "trend.png", "output file, .png or .svg")
	return cmd
}
