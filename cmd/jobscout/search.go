package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/jobscout/internal/app"
	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/harness"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
)

type searchOptions struct {
	keywords string
	location string
	max      int
	format   string
	fixtures string
	record   string
	store    bool
}

type searchOutput struct {
	Listings  []tools.ListingView    `json:"listings"`
	Sources   []domain.SourceSummary `json:"sources"`
	Persisted int                    `json:"persisted,omitempty"`
	FetchedAt string                 `json:"fetched_at"`
}

func newSearchCmd(load loadFunc) *cobra.Command {
	opts := searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search across every enabled source",
		Example: `  jobscout search -k "golang backend" -l Berlin
  jobscout search -k golang --format json --store
  jobscout search -k golang --record testdata/golang.yaml
  jobscout search -k golang --fixtures testdata/golang.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runSearch(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.keywords, "keywords", "k", "", "search keywords")
	f.StringVarP(&opts.location, "location", "l", "", "city, country or remote")
	f.IntVarP(&opts.max, "max", "n", tools.DefaultMaxResults, "total listings after dedup")
	f.StringVarP(&opts.format, "format", "f", "table", "output format: table or json")
	f.StringVar(&opts.fixtures, "fixtures", "", "replay responses from a cassette instead of the network")
	f.StringVar(&opts.record, "record", "", "record live responses into a cassette")
	f.BoolVar(&opts.store, "store", false, "persist listings in the configured storage")
	cmd.MarkFlagsMutuallyExclusive("fixtures", "record")

	return cmd
}

func runSearch(ctx context.Context, cfg config.Config, opts searchOptions, out io.Writer) error {
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	var (
		tr       app.Transport
		player   *harness.Player
		recorder *harness.Recorder
	)
	switch {
	case opts.fixtures != "":
		cassette, err := harness.LoadCassette(opts.fixtures)
		if err != nil {
			return err
		}
		player = harness.NewPlayer(cassette)
		tr.Override = player.Override()
	case opts.record != "":
		name := strings.TrimSuffix(filepath.Base(opts.record), filepath.Ext(opts.record))
		recorder = harness.NewRecorder(name, http.DefaultTransport)
		tr.HTTPClient = recorder.Client(0)
	}

	a, cleanup, err := app.Initialize(ctx, cfg, tr)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = a.Logger.Sync() }()

	if opts.store && a.Repository == nil {
		return errors.New("--store needs storage.driver to be configured")
	}

	res, err := a.Searcher.Search(ctx, domain.Query{
		Keywords:        opts.keywords,
		Location:        opts.location,
		MaxTotalResults: opts.max,
	})
	if err != nil {
		return err
	}

	if player != nil {
		if misses := player.Misses(); len(misses) > 0 {
			a.Logger.Warn("requests missing from cassette", "cassette", opts.fixtures, "misses", misses)
		}
	}
	if recorder != nil {
		if err := recorder.Save(opts.record); err != nil {
			return err
		}
		a.Logger.Info("cassette saved", "path", opts.record, "interactions", len(recorder.Cassette().Interactions))
	}

	o := searchOutput{
		Listings:  tools.Views(res.Listings),
		Sources:   res.Summaries(),
		FetchedAt: res.FetchedAt.UTC().Format(time.RFC3339),
	}
	if opts.store && len(res.Listings) > 0 {
		if err := a.Repository.UpsertListings(ctx, res.Listings); err != nil {
			return fmt.Errorf("store listings: %w", err)
		}
		o.Persisted = len(res.Listings)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	}
	return writeTable(out, o)
}

func writeTable(out io.Writer, o searchOutput) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCOMPANY\tLOCATION\tREMOTE\tSALARY\tSOURCE\tURL")
	for _, l := range o.Listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Title, l.Company, dash(l.Location), l.RemoteOption, strings.TrimSpace(salary(l)), l.Source, l.ApplicationURL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d listing(s)", len(o.Listings))
	if o.Persisted > 0 {
		fmt.Fprintf(out, ", %d stored", o.Persisted)
	}
	fmt.Fprintln(out)
	for _, s := range o.Sources {
		status := "ok"
		if s.Error != "" {
			status = s.Error
		}
		fmt.Fprintf(out, "  %-16s %3d  %6dms  %s\n", s.Source, s.Count, s.DurationMS, status)
	}
	return nil
}

func salary(l tools.ListingView) string {
	switch {
	case l.SalaryMin > 0 && l.SalaryMax > 0 && l.SalaryMin != l.SalaryMax:
		return fmt.Sprintf("%.0f-%.0f %s", l.SalaryMin, l.SalaryMax, l.Currency)
	case l.SalaryMin > 0:
		return fmt.Sprintf("%.0f %s", l.SalaryMin, l.Currency)
	case l.SalaryMax > 0:
		return fmt.Sprintf("%.0f %s", l.SalaryMax, l.Currency)
	default:
		return "-"
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
