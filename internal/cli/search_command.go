package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/search"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (r *RootCommand) newSearchCommand() *cobra.Command {
	var (
		form domain.SearchForm
		open bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search by place, date range, magnitude and radius",
		Long: `Geocode a place, query the catalog and print a geojson.io map link.

An empty result is reported but is not an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := r.runner.Await(cmd.Context(), "search", func(ctx context.Context) search.Outcome {
				return r.deps.Service.Search(ctx, form)
			}, r.progress)
			if err != nil {
				return err
			}
			r.printOutcome(out)
			if out.Kind == search.KindOK && open {
				if err := r.openURL(out.MapURL); err != nil {
					return fmt.Errorf("open browser: %w", err)
				}
			}
			return outcomeErr(out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.Location, "location", "", "Place name to search around")
	flags.StringVar(&form.StartDate, "start", "", "Start date, DD-MM-YYYY")
	flags.StringVar(&form.EndDate, "end", "", "End date, DD-MM-YYYY (inclusive)")
	flags.StringVar(&form.MinMagnitude, "min-mag", "", "Minimum magnitude (0-10)")
	flags.StringVar(&form.RadiusKm, "radius", "", "Search radius in km")
	flags.BoolVar(&open, "open", false, "Open the map link in the default browser")
	return cmd
}

func (r *RootCommand) newQuickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quick <location>",
		Short: "Magnitude 1+ events within 500 km over the last six months",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := strings.Join(args, " ")
			out, err := r.runner.Await(cmd.Context(), "quick", func(ctx context.Context) search.Outcome {
				return r.deps.Service.QuickSearch(ctx, location)
			}, r.progress)
			if err != nil {
				return err
			}
			if out.Kind == search.KindOK {
				if err := r.printTable(out.Records); err != nil {
					return err
				}
			}
			r.printOutcome(out)
			return outcomeErr(out)
		},
	}
}

func (r *RootCommand) newLatestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the newest event in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := r.deps.Service.Latest(cmd.Context())
			if errors.Is(err, search.ErrNoEvents) {
				fmt.Fprintln(r.out, "No recent earthquakes.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("network error: %w", err)
			}
			fmt.Fprintln(r.out, summary.Summary())
			return nil
		},
	}
}

// printOutcome writes the user-facing lines for an outcome.
func (r *RootCommand) printOutcome(out search.Outcome) {
	switch out.Kind {
	case search.KindOK:
		fmt.Fprintf(r.errOut, "%d earthquakes found\n", len(out.Records))
		fmt.Fprintln(r.out, out.MapURL)
	case search.KindInvalid:
		fmt.Fprintln(r.errOut, out.Message+":")
		for _, fe := range out.FieldErrors {
			fmt.Fprintf(r.errOut, "  %s: %s\n", fe.Field, fe.Message)
		}
	default:
		fmt.Fprintln(r.errOut, out.Message)
	}
}

func (r *RootCommand) printTable(records []domain.EarthquakeRecord) error {
	loc := time.UTC
	if r.deps.Config != nil && r.deps.Config.DisplayLocation != nil {
		loc = r.deps.Config.DisplayLocation
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("Magnitude", "Place", "Time")
	for _, rec := range records {
		if err := table.Append(
			strconv.FormatFloat(rec.Magnitude, 'f', 1, 64),
			rec.Place,
			domain.FormatOccurredAt(rec.OccurredAtEpochMillis, loc),
		); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	return table.Render()
}

func outcomeErr(out search.Outcome) error {
	if out.Failed() {
		return fmt.Errorf("%w: %s", ErrActionFailed, out.Kind)
	}
	return nil
}
