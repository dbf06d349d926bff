package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tendant/site-console/pkg/sitecontent/config"
	"github.com/tendant/site-console/pkg/sitecontent/scan"
)

var (
	scanCollections []string
	scanDryRun      bool
)

// scanCmd re-validates the documents already held by the configured store.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Validate every stored document of the configured database",
	Long: `scan connects to the database described by the server's environment
variables (DATABASE_URL, CONTENT_DB_SCHEMA, ...) and re-runs the save-time
checks against each stored content document and FAQ category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.WithEnv())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		svc, cleanup, err := cfg.BuildService(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to build service: %w", err)
		}
		defer cleanup()

		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
		result, err := scan.New(svc, logger).Scan(cmd.Context(), scan.Options{
			Collections: scanCollections,
			Processor:   scan.Validator{},
			DryRun:      scanDryRun,
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, f := range result.Failures {
			fmt.Fprintf(tw, "FAIL\t%s/%s\t%v\n", f.Collection, f.ID, f.Err)
		}
		fmt.Fprintf(tw, "found %d\tprocessed %d\tfailed %d\n", result.TotalFound, result.TotalProcessed, result.TotalFailed)
		if err := tw.Flush(); err != nil {
			return err
		}
		if result.TotalFailed > 0 {
			return fmt.Errorf("%d of %d documents failed", result.TotalFailed, result.TotalFound)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSliceVarP(&scanCollections, "collection", "c", nil, "collections to scan (default: all)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "list documents without validating them")
	rootCmd.AddCommand(scanCmd)
}
