package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/jobscout/internal/domain/job/providers"
	"github.com/honeycarbs/jobscout/pkg/fetch"
	"github.com/honeycarbs/jobscout/pkg/logging"
	"github.com/honeycarbs/jobscout/pkg/render"
)

func newSourcesCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List known sources and their politeness delays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			// nothing is fetched; the plain renderer keeps Chrome from starting
			fc := fetch.New(fetch.Config{})
			reg, err := providers.NewRegistry(cfg, providers.Deps{
				Fetcher:  fc,
				Renderer: render.HTTP{Client: fc},
				Logger:   logging.Nop(),
			})
			if err != nil {
				return err
			}
			defer reg.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tKIND\tENABLED\tDELAY")
			for _, s := range reg.Sources() {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s-%s\n", s.Name, s.Kind, s.Enabled, s.MinDelay, s.MaxDelay)
			}
			return tw.Flush()
		},
	}
}
