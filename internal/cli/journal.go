package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eportfolio/internal/models"
	"eportfolio/internal/store"
)

// addJournalCommands adds journal commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journalled transactions",
		Long:  "Display recorded buys, sells and price updates, newest first.",
		Example: `  eportfolio history
  eportfolio history --symbol IBM --limit 5
  eportfolio history --side sell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
			defer cancel()
			defer app.closeJournal()

			symbol, _ := cmd.Flags().GetString("symbol")
			side, _ := cmd.Flags().GetString("side")
			limit, _ := cmd.Flags().GetInt("limit")

			filter := store.TransactionFilter{
				Symbol: strings.ToUpper(symbol),
				Side:   models.Side(strings.ToUpper(side)),
				Limit:  limit,
			}
			if filter.Side != "" && !filter.Side.Valid() {
				output.Error("Unknown side %q (use buy, sell or update)", side)
				return fmt.Errorf("unknown side %q", side)
			}

			j := app.journal(ctx)
			if j == nil {
				output.Warning("Journal not available. Enable it under [journal] in the config file.")
				return nil
			}

			txs, err := j.GetTransactions(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch transactions: %v", err)
				return err
			}

			lastSave, err := j.GetLastSave(ctx, absPath(app.Config.Portfolio.File))
			if err != nil {
				app.Logger.Warn().Err(err).Msg("Failed to read last save time")
			}

			if output.IsJSON() {
				if txs == nil {
					txs = []models.Transaction{}
				}
				return output.JSON(txs)
			}

			if len(txs) == 0 {
				output.Info("No transactions recorded.")
				return nil
			}

			table := NewTable(output, "Time", "Side", "Type", "Symbol", "Qty", "Price", "Amount")
			var bought, proceeds float64
			for _, t := range txs {
				amount := ""
				switch t.Side {
				case models.SideBuy:
					bought += t.Amount
					amount = output.Money(t.Amount)
				case models.SideSell:
					proceeds += t.Amount
					amount = output.Money(t.Amount)
				}
				table.AddRow(
					FormatDateTime(t.Timestamp),
					string(t.Side),
					string(t.Kind),
					t.Symbol,
					fmt.Sprintf("%d", t.Quantity),
					FormatPrice(t.Price),
					amount,
				)
			}
			table.Render()

			output.Println()
			output.Bold("Summary")
			output.Printf("  Transactions: %d\n", len(txs))
			output.Printf("  Bought:       %s\n", output.Money(bought))
			output.Printf("  Proceeds:     %s\n", output.Money(proceeds))
			if !lastSave.IsZero() {
				output.Printf("  Last Save:    %s\n", FormatDateTime(lastSave))
			}
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "only this symbol")
	cmd.Flags().String("side", "", "only buy, sell or update")
	cmd.Flags().Int("limit", 20, "maximum transactions to show (0 for all)")

	return cmd
}
