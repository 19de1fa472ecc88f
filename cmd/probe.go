package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ytget/ytgrab-bot/internal/logging"
	"github.com/ytget/ytgrab-bot/internal/model"
	"github.com/ytget/ytgrab-bot/internal/platform"
	"github.com/ytget/ytgrab-bot/internal/probe"
	"github.com/ytget/ytgrab-bot/internal/quality"
)

var flagJSON bool

var probeCmd = &cobra.Command{
	Use:   "probe <url>",
	Short: "Print the quality options offered for a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  probeRun,
}

func init() {
	probeCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output options as JSON")
}

// probeReport is the JSON form of a probe
type probeReport struct {
	Platform     string                `json:"platform"`
	Title        string                `json:"title"`
	Duration     float64               `json:"duration"`
	FromPlaylist bool                  `json:"from_playlist"`
	Options      []model.QualityOption `json:"options"`
}

func probeRun(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	name, ok := platform.NewDetector(cfg.Platforms).Detect(rawURL)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUnsupportedPlatform, rawURL)
	}

	resolver := platform.NewPlaylistResolver()
	resolver.SetTimeout(cfg.Download.ProbeTimeout.Duration)

	svc := probe.NewService(probe.Options{
		YtdlpPath:   cfg.Download.YtdlpPath,
		CookiesPath: cfg.Download.CookiesPath,
	}, resolver, logging.Component(logger, "probe"))

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Download.ProbeTimeout.Duration)
	defer cancel()

	info, err := svc.Probe(ctx, rawURL)
	if err != nil {
		return err
	}
	options := quality.Derive(info)

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(probeReport{
			Platform:     name,
			Title:        info.Title,
			Duration:     info.Duration,
			FromPlaylist: info.FromPlaylist,
			Options:      options,
		})
	}

	fmt.Fprintf(out, "%s: %s\n", name, info.Title)
	if len(options) == 0 {
		fmt.Fprintln(out, "no quality options")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTION\tFORMAT\tCONTAINER")
	for _, o := range options {
		fmt.Fprintf(w, "%s\t%s\t%s\n", quality.ButtonText(o), o.EncodingRef, o.Container)
	}
	return w.Flush()
}
