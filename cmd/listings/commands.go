package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"staypulse/internal/app"
	"staypulse/internal/exporter"
	"staypulse/internal/files"
	"staypulse/internal/infrastructure"
	api "staypulse/pkg/contracts/api/v1"
	"staypulse/pkg/contracts/domain"
)

func (c *cli) summaryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Load the source and print headline metrics",
		Long: `Load the configured source, report what cleaning did to it and print the
dashboard headline metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			view, err := svc.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]interface{}{
					"load":    svc.Report(),
					"summary": view.Summary,
				})
			}

			r := svc.Report()
			s := view.Summary
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Source\t%s (%s)\n", r.Source, r.Format)
			fmt.Fprintf(tw, "Rows read\t%d\n", r.RawRows)
			fmt.Fprintf(tw, "Duplicates removed\t%d\n", r.Duplicates)
			fmt.Fprintf(tw, "Minimum nights cap\t%.0f (%d rows outside)\n", r.MinNightsCap, r.OutOfRange)
			fmt.Fprintf(tw, "Listings\t%d\n", s.TotalListings)
			fmt.Fprintf(tw, "Distinct listings\t%d\n", s.DistinctListings)
			fmt.Fprintf(tw, "Average price\t%.2f\n", s.AveragePrice)
			fmt.Fprintf(tw, "Average availability\t%.1f\n", s.AverageAvailability)
			fmt.Fprintf(tw, "Total reviews\t%.0f\n", s.TotalReviews)
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the load report and summary as JSON")
	return cmd
}

func (c *cli) neighbourhoodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "neighbourhoods [group]",
		Short: "List neighbourhood groups or the neighbourhoods of one group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}

			group := domain.All
			if len(args) == 1 {
				group = args[0]
			}
			opts, err := svc.Options(cmd.Context(), group)
			if err != nil {
				return err
			}

			values := opts.NeighbourhoodGroups
			if domain.IsSelected(group) {
				values = opts.Neighbourhoods
			}
			for _, v := range values {
				if v == domain.All {
					continue
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), v); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) recommendCmd() *cobra.Command {
	var (
		q      domain.RecommendationQuery
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Find listings that fit a budget and length of stay",
		Example: `  listings recommend --group Brooklyn --neighbourhood Williamsburg --budget 300 --nights 3
  listings recommend --group Manhattan --neighbourhood Harlem --budget 500 --nights 2 --room-type "Private room"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			view, err := svc.Recommend(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, view)
			}
			if !view.Matched {
				_, err := fmt.Fprintln(out, view.Message)
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tROOM TYPE\tTOTAL\tMIN NIGHTS")
			for _, l := range view.Listings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\n", l.ID, l.Name, l.RoomType, l.TotalCost, l.MinimumNights)
			}
			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.NeighbourhoodGroup, "group", "", "neighbourhood group")
	f.StringVar(&q.Neighbourhood, "neighbourhood", "", "neighbourhood")
	f.Float64Var(&q.Budget, "budget", 0, "total budget for the stay")
	f.IntVar(&q.Nights, "nights", 1, "number of nights")
	f.StringVar(&q.RoomType, "room-type", "", "restrict to one room type")
	f.BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("neighbourhood")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		output  string
		format  string
		force   bool
		group   string
		hood    string
		room    string
		policy  string
		instant bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cleaned, filtered listings to CSV or Excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = f.Filename(cmdNow())
			}
			if fileExists(output) && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", output)
			}

			svc, err := c.service(cmd)
			if err != nil {
				return err
			}

			criteria := api.CriteriaRequest{
				NeighbourhoodGroup: group,
				Neighbourhood:      hood,
				RoomType:           room,
				InstantBookable:    instant,
				CancellationPolicy: policy,
			}.Criteria()

			if err := files.EnsureOutputDir(output); err != nil {
				return err
			}
			err = exporter.WriteFile(output, func(w io.Writer) error {
				return svc.Export(cmd.Context(), criteria, f, w)
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&output, "output", "o", "", "output file (default: listings_<timestamp>.<format>)")
	fl.StringVar(&format, "format", string(exporter.FormatCSV), "export format: "+strings.Join([]string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, ", "))
	fl.BoolVar(&force, "force", false, "overwrite an existing output file")
	fl.StringVar(&group, "group", "", "neighbourhood group filter")
	fl.StringVar(&hood, "neighbourhood", "", "neighbourhood filter")
	fl.StringVar(&room, "room-type", "", "room type filter")
	fl.StringVar(&policy, "cancellation-policy", "", "cancellation policy filter")
	fl.BoolVar(&instant, "instant-bookable", false, "only instantly bookable listings")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the listings API and session websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != 0 {
				c.cfg.Server.Port = port
			}
			logger, err := infrastructure.InitializeLogger(c.cfg.Logging)
			if err != nil {
				return err
			}
			defer infrastructure.CloseLogFile()

			application, err := app.NewApplication(c.cfg, logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides server.port")
	return cmd
}
