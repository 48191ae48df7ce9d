package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teluguvibes/curator-cli/internal/model"
	"github.com/teluguvibes/curator-cli/internal/pipeline"
)

var (
	ingestDry        bool
	ingestSmart      bool
	ingestFull       bool
	ingestRefresh    bool
	ingestReset      bool
	ingestConfirm    bool
	ingestLimit      int
	ingestCategories string
	ingestType       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one full curation batch",
	Long:  "Discovers entities, ranks them, refreshes metadata for the eligible set, safety-gates every content candidate, and persists the results. A run summary is always printed, including on partial failure.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		mode, err := ingestMode()
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := pipeline.IngestOptions{
			Mode:       mode,
			Limit:      ingestLimit,
			Categories: splitList(ingestCategories),
			Confirmed:  ingestConfirm,
		}
		for _, t := range splitList(ingestType) {
			opts.Types = append(opts.Types, model.EntityType(t))
		}

		result, runErr := env.Pipeline.Ingest(ctx, opts)

		// The summary prints even when the batch failed partway.
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			zap.L().Warn("encode batch result", zap.Error(encErr))
		}

		if runErr != nil {
			return eris.Wrap(runErr, "ingest")
		}
		return nil
	},
}

// ingestMode resolves the mutually exclusive mode flags.
func ingestMode() (pipeline.Mode, error) {
	var selected []pipeline.Mode
	for flag, mode := range map[*bool]pipeline.Mode{
		&ingestDry:     pipeline.ModeDry,
		&ingestSmart:   pipeline.ModeSmart,
		&ingestFull:    pipeline.ModeFull,
		&ingestRefresh: pipeline.ModeRefresh,
		&ingestReset:   pipeline.ModeReset,
	} {
		if *flag {
			selected = append(selected, mode)
		}
	}
	switch len(selected) {
	case 0:
		return pipeline.ModeSmart, nil
	case 1:
		return selected[0], nil
	default:
		return "", eris.New("ingest: --dry, --smart, --full, --refresh, and --reset are mutually exclusive")
	}
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDry, "dry", false, "compute everything, write nothing")
	ingestCmd.Flags().BoolVar(&ingestSmart, "smart", false, "refresh only entities missing metadata (default)")
	ingestCmd.Flags().BoolVar(&ingestFull, "full", false, "refresh every eligible entity")
	ingestCmd.Flags().BoolVar(&ingestRefresh, "refresh", false, "skip discovery, refresh stored entities")
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear learned trend state first (requires --confirm)")
	ingestCmd.Flags().BoolVar(&ingestConfirm, "confirm", false, "confirm destructive operations")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "max entities per batch (default from config)")
	ingestCmd.Flags().StringVar(&ingestCategories, "categories", "", "comma-separated content categories to include")
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "comma-separated entity types")
	rootCmd.AddCommand(ingestCmd)
}
