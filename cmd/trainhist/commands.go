package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/okian/trainhist/internal/config"
	"github.com/okian/trainhist/internal/domain/currency"
	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/offline"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trainhist",
		Short:         "Reconstruct training histories offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newReportCmd(), newSeasonCmd(), newConvertCmd())
	return root
}

func newReportCmd() *cobra.Command {
	cfg := &offline.Config{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute a report from a bundle file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := offline.SetupLogging(cmd.ErrOrStderr(), cfg.Verbose); err != nil {
				return err
			}
			_, err := offline.Run(cmd.Context(), cfg, cmd.OutOrStdout())
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BundlePath, "bundle", "", "bundle file (YAML, or JSON by .json extension)")
	f.StringVar(&cfg.Format, "format", offline.FormatText, "output format: text or json")
	f.StringVar(&cfg.Currency, "currency", "", "show transfer prices in this currency")
	f.StringVar(&cfg.OutputFile, "output", "", "also write the JSON report to this file")
	f.BoolVar(&cfg.Verbose, "verbose", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("bundle")
	return cmd
}

type seasonArgs struct {
	date     string
	season   int
	day      int
	timezone string
}

func newSeasonCmd() *cobra.Command {
	var a seasonArgs
	cmd := &cobra.Command{
		Use:   "season [YYYY-MM-DD...]",
		Short: "Print the season and season start of each date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			loc, err := time.LoadLocation(a.timezone)
			if err != nil {
				return fmt.Errorf("timezone: %w", err)
			}
			date, err := time.ParseInLocation(config.AnchorDateLayout, a.date, loc)
			if err != nil {
				return fmt.Errorf("%w: anchor date: %w", season.ErrAnchorUnavailable, err)
			}
			anchor, err := season.NewAnchor(date, a.season, a.day)
			if err != nil {
				return err
			}
			clock := season.NewClock(anchor, loc)
			for _, arg := range argv {
				t, err := time.ParseInLocation(config.AnchorDateLayout, arg, loc)
				if err != nil {
					return fmt.Errorf("date %q: %w", arg, err)
				}
				s := clock.Of(t)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", arg, s, clock.StartOf(s).Format(config.AnchorDateLayout))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&a.date, "anchor-date", "", "date the anchor was observed (YYYY-MM-DD)")
	f.IntVar(&a.season, "anchor-season", 0, "season on the anchor date")
	f.IntVar(&a.day, "anchor-day", 0, "day of season on the anchor date (0-90)")
	f.StringVar(&a.timezone, "timezone", config.New().Timezone, "IANA timezone of the calendar")
	_ = cmd.MarkFlagRequired("anchor-date")
	_ = cmd.MarkFlagRequired("anchor-season")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert PRICE...",
		Short: "Convert a price such as \"1 000 000 SEK\" to another currency",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			target := strings.ToUpper(strings.TrimSpace(to))
			if !currency.Known(target) {
				return fmt.Errorf("unknown currency %q; known: %s", to, strings.Join(currency.Codes(), ", "))
			}
			text := strings.Join(argv, " ")
			p, ok := currency.ParsePrice(text)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), currency.Format(model.Price{}, language.English))
				return nil
			}
			converted, ok := currency.Reprice(p, target)
			line := currency.Format(converted, language.English)
			if !ok {
				line += fmt.Sprintf(" (no rate for %s)", p.Currency)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "USD", "target currency")
	return cmd
}
