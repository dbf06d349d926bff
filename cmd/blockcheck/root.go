package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	forceFAQ   bool
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "blockcheck [file...]",
	Short: "Validate site console documents",
	Long: `blockcheck reads stored content documents or FAQ categories as JSON,
hydrates their block lists and reports every problem that would block a save.
With no arguments, or with "-", the document is read from standard input.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"-"}
		}
		reports := make([]Report, 0, len(args))
		for _, name := range args {
			data, err := readInput(cmd, name)
			if err != nil {
				return err
			}
			reports = append(reports, Check(name, data, forceFAQ))
		}
		if err := writeReports(cmd.OutOrStdout(), reports, jsonOutput, quiet); err != nil {
			return err
		}
		if failed := countFailed(reports); failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(reports))
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&forceFAQ, "faq", false, "treat every input as an FAQ category")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print reports as JSON")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print failing documents")
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
