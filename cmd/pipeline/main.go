// Command pipeline analyzes one ticker from the command line: it prints the
// report text and the rating, and writes the rating document.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"corporate_analyst/pkg/core/analyst"
	"corporate_analyst/pkg/core/config"
	"corporate_analyst/pkg/core/export"
	"corporate_analyst/pkg/core/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var errNoTicker = errors.New("a TICKER argument or the TICKER environment variable is required")

type options struct {
	configPath string
	narrative  bool
	format     string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "pipeline [TICKER]",
		Short: "Analyze one ticker and write its rating document",
		Long: `Fetches the ticker's fundamentals, prints the analysis and the rating, and
saves the rating document to the export directory. TICKER falls back to the
TICKER environment variable.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the YAML config file")
	flags.BoolVar(&opts.narrative, "narrative", false, "also generate the LLM equity research report")
	flags.StringVarP(&opts.format, "format", "f", export.FormatDocx, "rating document format: docx or pdf")
	flags.DurationVar(&opts.timeout, "timeout", 3*time.Minute, "overall deadline")
	return cmd
}

func (o *options) execute(cmd *cobra.Command, args []string) error {
	ticker := os.Getenv("TICKER")
	if len(args) == 1 {
		ticker = args[0]
	}
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return errNoTicker
	}
	if o.format != export.FormatDocx && o.format != export.FormatPDF {
		return fmt.Errorf("unsupported format %q", o.format)
	}

	cfg, err := config.Load(o.configPath)
	ctx := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	comps, err := analyst.Build(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to start analyst service: %w", err)
	}
	defer comps.Close()

	if err := run(ctx, comps.Service, cfg.Export.Dir, ticker, o.format, o.narrative, cmd.OutOrStdout()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("ticker", ticker).Msg("pipeline failed")
		return err
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *analyst.Service, dir, ticker, format string, withReport bool, out io.Writer) error {
	res, err := svc.Analyze(ctx, ticker)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, res.Analysis)
	fmt.Fprintln(out)
	ratingJSON, err := json.MarshalIndent(res.Rating, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(ratingJSON))

	var write export.WriteFunc
	switch format {
	case export.FormatDocx:
		write = func(w io.Writer) error { return export.WriteRatingDocx(w, res.Ticker, res.Rating, res.Analysis) }
	case export.FormatPDF:
		write = func(w io.Writer) error { return export.WriteRatingPDF(w, res.Ticker, res.Rating, res.Analysis) }
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	path, err := export.SaveFile(dir, export.DefaultName(res.Ticker, format), write)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSaved %s\n", path)

	if !withReport {
		return nil
	}
	nr, err := svc.NarrativeFor(ctx, res.Ticker, res.Analysis)
	if err != nil {
		return err
	}
	path, err = export.SaveFile(dir, export.NarrativeDefaultName, func(w io.Writer) error {
		return export.WriteNarrativeDocx(w, nr.Report)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", path)
	return nil
}
