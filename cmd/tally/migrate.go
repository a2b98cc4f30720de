package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/legacy"
	"github.com/Veraticus/tally/internal/merchant"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "migrate <merchant_categories.csv>",
		Short: "Convert legacy CSV rules to .merchants format",
		Long: `Convert a legacy merchant_categories.csv into .merchants rules.

Bracket modifiers in the pattern column become expression conditions. The
converted text is loaded before it is written, so a successful migrate always
produces a valid rule file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := legacy.ReadCSVFile(args[0])
			if err != nil {
				return err
			}

			text, err := legacy.RenderMerchants(rows)
			if err != nil {
				return err
			}

			eng, err := merchant.Parse(text)
			if err != nil {
				return fmt.Errorf("migrated rules do not load: %w", err)
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}

			if err := os.WriteFile(output, []byte(text), 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			slog.Info("Migrated rules", "from", args[0], "to", output, "rules", len(eng.Rules()))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Wrote %d rules to %s", len(eng.Rules()), output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
