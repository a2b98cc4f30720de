package main

import (
	"fmt"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/config"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file...]",
		Short: "Validate rule files",
		Long: `Load rule files and report what they contain, or the first error.

Files ending in .csv are read as legacy merchant_categories.csv; anything else
is read as .merchants rules. Without arguments the configured files are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			eng, src, err := loadEngine(cfg, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s is valid", src.Name())))
			fmt.Fprintf(out, "  Rules:          %d\n", len(eng.Rules()))
			fmt.Fprintf(out, "  Categorization: %d\n", len(eng.CategorizationRules()))
			fmt.Fprintf(out, "  Tag only:       %d\n", len(eng.TagOnlyRules()))
			fmt.Fprintf(out, "  Variables:      %d\n", len(eng.Variables()))
			return nil
		},
	}
}
