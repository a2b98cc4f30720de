package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/model"
	"github.com/spf13/cobra"
)

func explainCmd() *cobra.Command {
	var (
		description string
		raw         string
		date        string
		amount      float64
	)

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show how the rules treat one transaction",
		Example: `  tally explain --description "NETFLIX.COM" --amount 15.99
  tally explain --description "UBER *TRIP" --amount 23.40 --date 2024-01-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			txn := model.Transaction{
				Description:    description,
				RawDescription: raw,
				Amount:         amount,
			}
			if date != "" {
				parsed, parseErr := time.Parse(time.DateOnly, date)
				if parseErr != nil {
					return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD): %w", date, parseErr)
				}
				txn.Date = parsed
			}

			eng, _, err := loadEngine(cfg, nil)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderExplain(txn, eng.Match(txn)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "transaction description")
	cmd.Flags().StringVar(&raw, "raw", "", "raw statement description (defaults to --description)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "transaction amount")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}
