package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/feedpulse/internal/export"
	"github.com/bobmcallan/feedpulse/internal/filters"
	"github.com/bobmcallan/feedpulse/internal/querystate"
	"github.com/bobmcallan/feedpulse/internal/services/search"
	"github.com/bobmcallan/feedpulse/internal/services/upload"
)

type searchFlags struct {
	query     string
	sort      string
	page      int
	sentiment []string
	areas     []string
	sources   []string
	segments  []string
	dateFrom  string
	dateTo    string
	dateRange string
	customer  string
	linked    string
	link      string
	xlsx      string
}

// values renders the flags as the feedback list URL, so the CLI resolves
// state exactly as the web list does. A --url link is the starting point and
// explicit flags override its keys.
func (f *searchFlags) values() (url.Values, error) {
	raw := f.link
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	} else if strings.HasPrefix(raw, "/") {
		raw = ""
	}
	state, err := querystate.New(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --url: %w", err)
	}

	set := func(key, val string) {
		if val != "" {
			state.Set(key, val)
		}
	}
	set(filters.KeyQuery, f.query)
	set(filters.KeySort, f.sort)
	set(filters.KeyDateFrom, f.dateFrom)
	set(filters.KeyDateTo, f.dateTo)
	set(filters.KeyRange, f.dateRange)
	set(filters.KeyCustomer, f.customer)
	set(filters.KeySentiment, strings.Join(f.sentiment, ","))
	set(filters.KeyArea, strings.Join(f.areas, ","))
	set(filters.KeySource, strings.Join(f.sources, ","))
	set(filters.KeySegment, strings.Join(f.segments, ","))
	switch strings.ToLower(f.linked) {
	case "":
	case "yes", "true", "1":
		state.Set(filters.KeyLinked, "1")
	case "no", "false", "0":
		state.Set(filters.KeyLinked, "0")
	default:
		return nil, fmt.Errorf("--has-customer must be yes or no, got %q", f.linked)
	}
	if f.page > 1 {
		state.Set(filters.KeyPage, strconv.Itoa(f.page))
	}
	return state.Values(), nil
}

func searchCmd(g *globalFlags) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search feedback",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.query = args[0]
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			params, err := f.values()
			if err != nil {
				return err
			}
			st := filters.ParseFeedbackState(params, time.Now())
			fetcher := search.NewFetcherFromConfig(a.Client, a.Logger, a.Config.Search)
			defer fetcher.Close()

			snap := fetcher.Fetch(cmd.Context(), st)
			if snap.Err != nil {
				return sessionError(snap.Err)
			}

			if f.xlsx != "" {
				data, err := export.Feedback(snap.Items)
				if err != nil {
					return err
				}
				if err := os.WriteFile(f.xlsx, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", f.xlsx, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(snap.Items), f.xlsx)
			}

			starred, _ := localState(a)
			ids, _ := starred.List(cmd.Context())
			return emit(cmd.OutOrStdout(), g, snap, func() string {
				return formatFeedbackList(snap, ids)
			})
		},
	}

	cmd.Flags().StringVar(&f.sort, "sort", "", "relevance, date or sentiment")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().StringSliceVar(&f.sentiment, "sentiment", nil, "positive, negative or neutral (repeatable)")
	cmd.Flags().StringSliceVar(&f.areas, "area", nil, "product area (repeatable)")
	cmd.Flags().StringSliceVar(&f.sources, "source", nil, "source id (repeatable)")
	cmd.Flags().StringSliceVar(&f.segments, "segment", nil, "customer segment (repeatable)")
	cmd.Flags().StringVar(&f.dateFrom, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.dateTo, "to", "", "end date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.dateRange, "range", "", "last N days, used when --from and --to are unset")
	cmd.Flags().StringVar(&f.customer, "customer", "", "customer id")
	cmd.Flags().StringVar(&f.linked, "has-customer", "", "only feedback linked (yes) or not linked (no) to a customer")
	cmd.Flags().StringVar(&f.link, "url", "", "start from a feedback list link, e.g. /feedback?sentiment=negative")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "also write the page to an Excel file")
	return cmd
}

func feedbackCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Inspect and add feedback",
	}
	cmd.AddCommand(feedbackGetCmd(g), feedbackSimilarCmd(g), feedbackAddCmd(g))
	return cmd
}

func feedbackGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one feedback item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.Client.GetFeedback(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}
			starred, _ := localState(a)
			on, _ := starred.Contains(cmd.Context(), item.ID)
			return emit(cmd.OutOrStdout(), g, item, func() string {
				return formatFeedback(item, on)
			})
		},
	}
}

func feedbackSimilarCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "similar <id>",
		Short: "List feedback similar to one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.Client.SimilarFeedback(cmd.Context(), args[0])
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, items, func() string {
				return formatSimilar(args[0], items)
			})
		},
	}
}

func feedbackAddCmd(g *globalFlags) *cobra.Command {
	var in upload.ManualFeedback
	var rating float64

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add one feedback item by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Text = args[0]
			if cmd.Flags().Changed("rating") {
				in.Rating = &rating
			}
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.Manual.AddFeedback(cmd.Context(), in, time.Now().Format(filters.DateLayout))
			if err != nil {
				return sessionError(err)
			}
			return emit(cmd.OutOrStdout(), g, item, func() string {
				return formatFeedback(item, false)
			})
		},
	}

	cmd.Flags().StringVar(&in.Source, "source", "", "source id (default support_ticket)")
	cmd.Flags().StringVar(&in.ProductArea, "area", "", "product area")
	cmd.Flags().StringVar(&in.CustomerName, "customer", "", "customer name")
	cmd.Flags().StringVar(&in.AuthorName, "author", "", "author name")
	cmd.Flags().StringVar(&in.AuthorEmail, "author-email", "", "author email")
	cmd.Flags().Float64Var(&rating, "rating", 0, "rating 0-10")
	cmd.Flags().StringVar(&in.Date, "date", "", "date YYYY-MM-DD (default today)")
	return cmd
}
