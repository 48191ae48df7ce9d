package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/pipeline"
)

var (
	discoverSources string
	discoverTypes   string
	discoverLimit   int
	discoverDry     bool
	discoverVerbose bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover entities from public data sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("discover"); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := pipeline.DiscoverOptions{
			Sources: splitList(discoverSources),
			Limit:   discoverLimit,
		}
		for _, t := range splitList(discoverTypes) {
			opts.Types = append(opts.Types, model.EntityType(t))
		}

		res, err := env.Pipeline.Discover(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		if !discoverDry {
			if _, err := env.Store.UpsertCelebrities(ctx, res.Entities); err != nil {
				return eris.Wrap(err, "persist discovered entities")
			}
		}

		zap.L().Info("discovery complete",
			zap.Int("entities", len(res.Entities)),
			zap.Int("blocked", res.Blocked),
			zap.Int("errors", len(res.Errors)),
			zap.Bool("dry", discoverDry))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if discoverVerbose {
			return enc.Encode(res)
		}
		return enc.Encode(map[string]any{
			"discovered": len(res.Entities),
			"blocked":    res.Blocked,
			"errors":     res.Errors,
		})
	},
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	discoverCmd.Flags().StringVar(&discoverSources, "source", "", "comma-separated connectors (wikidata,tmdb; default all)")
	discoverCmd.Flags().StringVar(&discoverTypes, "type", "", "comma-separated entity types (default from config)")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 0, "max entities to discover (default from config)")
	discoverCmd.Flags().BoolVar(&discoverDry, "dry", false, "compute everything, write nothing")
	discoverCmd.Flags().BoolVar(&discoverVerbose, "verbose", false, "print full entity records")
	rootCmd.AddCommand(discoverCmd)
}
