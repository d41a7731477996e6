// Package cli implements the quake command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	httpadapter "github.com/couchcryptid/earthquake-locator/internal/adapter/http"
	"github.com/couchcryptid/earthquake-locator/internal/config"
	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/observability"
	"github.com/couchcryptid/earthquake-locator/internal/search"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

// ErrActionFailed marks a command whose outcome was already printed but
// should still end with a non-zero exit status.
var ErrActionFailed = errors.New("action failed")

// Service is everything the commands need from search.Service.
type Service interface {
	httpadapter.SearchService
	sharedobs.ReadinessChecker
}

// Deps are the collaborators built by main.
type Deps struct {
	Config  *config.Config
	Service Service
	Catalog domain.Catalog
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// RootCommand represents the base command when called without any subcommands.
type RootCommand struct {
	cmd     *cobra.Command
	deps    Deps
	runner  *search.Runner
	out     io.Writer
	errOut  io.Writer
	openURL func(string) error
}

// NewRootCommand creates the root cobra command and its subcommands.
func NewRootCommand(deps Deps) *RootCommand {
	root := &RootCommand{
		deps:    deps,
		runner:  search.NewRunner(1, deps.Logger),
		out:     os.Stdout,
		errOut:  os.Stderr,
		openURL: browser.OpenURL,
	}

	root.cmd = &cobra.Command{
		Use:   "quake",
		Short: "Search the USGS earthquake catalog around a place",
		Long: `quake finds earthquakes near a named place and turns the results into a
geojson.io map link.

EXAMPLES:
  quake search --location "Los Angeles" --start 01-01-2024 --end 31-01-2024 --min-mag 2.5 --radius 100
  quake search --location Tokyo --start 01-03-2024 --end 31-03-2024 --min-mag 4 --radius 300 --open
  quake quick "Reykjavik"                  # Magnitude 1+ within 500 km over the last six months
  quake latest                             # Newest event in the catalog
  quake link --file response.geojson       # Map link from a saved catalog response
  quake link --decode "<map link>"         # Print the GeoJSON inside a map link
  quake serve                              # JSON API on HTTP_ADDR
  quake watch                              # Publish each new latest event

DATES:
  Dates are DD-MM-YYYY. Magnitude and radius accept any number >= 0.

CONFIGURATION (environment, .env is loaded when present):
  USGS_BASE_URL, USGS_TIMEOUT              Catalog endpoint and request timeout (default 15s)
  MAPBOX_TOKEN, MAPBOX_ENABLED             Mapbox geocoding; Nominatim is used otherwise
  NOMINATIM_BASE_URL, NOMINATIM_USER_AGENT OpenStreetMap geocoding
  DISPLAY_TIMEZONE                         Zone for printed event times (default UTC)
  HTTP_ADDR, SHUTDOWN_TIMEOUT              serve settings
  KAFKA_BROKERS, KAFKA_FEED_TOPIC          Feed destination for serve and watch
  FEED_ENABLED, WATCH_SCHEDULE             Feed switch and cron schedule (default @every 1m)
  LOG_LEVEL, LOG_FORMAT                    Logging (debug|info|warn|error, text|json)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.addSubcommands()
	return root
}

// SetOutput redirects command output, mainly for tests.
func (r *RootCommand) SetOutput(out, errOut io.Writer) {
	r.out = out
	r.errOut = errOut
	r.cmd.SetOut(out)
	r.cmd.SetErr(errOut)
}

// SetArgs overrides os.Args[1:].
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// Execute runs the root command.
func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newSearchCommand(),
		r.newQuickCommand(),
		r.newLatestCommand(),
		r.newLinkCommand(),
		r.newServeCommand(),
		r.newWatchCommand(),
	)
}

// progress reports background state transitions on stderr.
func (r *RootCommand) progress(st search.State) {
	if st.Busy {
		fmt.Fprintf(r.errOut, "%s: working...\n", st.Name)
	}
}
