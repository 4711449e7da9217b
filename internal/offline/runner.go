package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/okian/trainhist/internal/app"
	"github.com/okian/trainhist/pkg/logger"
)

// Run computes the report for cfg.BundlePath and writes it to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("offline")

	format := cfg.Format
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("%w: %q", ErrFormat, cfg.Format)
	}

	log.Info(ctx, "computing report from bundle",
		logger.String("bundle", cfg.BundlePath),
		logger.String("format", format),
		logger.Bool("verbose", cfg.Verbose))

	b, err := LoadBundle(cfg.BundlePath)
	if err != nil {
		return nil, err
	}
	if cfg.Currency != "" {
		b.Currency = cfg.Currency
	}

	svc := app.New(app.WithLogger(log))
	report, err := svc.ComputeBundle(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("report computation failed: %w", err)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	default:
		err = RenderText(out, report)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := SaveReport(cfg.OutputFile, report); err != nil {
			return nil, err
		}
		log.Info(ctx, "report saved", logger.String("file", cfg.OutputFile))
	}

	stats.Snapshots = len(report.Snapshots)
	stats.Gains = report.TotalGains
	stats.Transfers = len(report.Prices)
	stats.Clamps = len(report.Clamps)
	stats.Skipped = report.Skipped.SeriesPoints + report.Skipped.Transfers + report.Skipped.Prices + report.Skipped.ScoutSkills
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Debug(ctx, "run finished",
		logger.Int("snapshots", stats.Snapshots),
		logger.Int("gains", stats.Gains),
		logger.Int("clamps", stats.Clamps),
		logger.Int("skipped", stats.Skipped),
		logger.Duration("duration", stats.Duration))
	return stats, nil
}
