package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"eportfolio/internal/holding"
	"eportfolio/internal/pricerange"
)

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all holdings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			p, err := app.loadPortfolio()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			holdings := p.List()
			if output.IsJSON() {
				return output.JSON(holdings)
			}
			if len(holdings) == 0 {
				output.Info("No holdings.")
				output.Dim("Tip: add one with 'eportfolio buy stock <SYMBOL> <QTY> <PRICE> --name <NAME>'.")
				return nil
			}

			renderHoldings(output, holdings)
			return nil
		},
	}
}

func newGainCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "gain",
		Short: "Show the gain of every holding and the total",
		Long: `Show each holding's gain (market value minus book value) and the
total gain of the portfolio.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			p, err := app.loadPortfolio()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			holdings := p.List()
			total := p.TotalGain()

			if output.IsJSON() {
				type gainRow struct {
					Symbol string  `json:"symbol"`
					Gain   float64 `json:"gain"`
				}
				rows := make([]gainRow, len(holdings))
				for i, h := range holdings {
					rows[i] = gainRow{Symbol: h.Symbol, Gain: h.Gain}
				}
				return output.JSON(map[string]interface{}{
					"holdings":   rows,
					"total_gain": total,
				})
			}

			table := NewTable(output, "Symbol", "Name", "Gain")
			for _, h := range holdings {
				table.AddRow(h.Symbol, TruncateString(h.Name, 32), output.FormatGain(h.Gain))
			}
			table.Render()
			output.Println()
			output.Box("Total Gain", []string{output.FormatGain(total)})
			return nil
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search holdings",
		Long: `Search holdings by symbol, name keywords and price range. Every filter
is optional; a holding must match all of the ones given.

  --symbol    exact symbol, any case
  --keywords  words that must all appear in the name, any case and order
  --range     price range: P (exactly P), P- (at least P), -P (at most P)
              or P1-P2 (between P1 and P2 inclusive); prices take up to two
              decimals. A range outside this form matches nothing.`,
		Example: `  eportfolio search --keywords "growth fund"
  eportfolio search --range 40-60
  eportfolio search --symbol ibm --range 50-`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			symbol, _ := cmd.Flags().GetString("symbol")
			keywords, _ := cmd.Flags().GetString("keywords")
			priceRange, _ := cmd.Flags().GetString("range")

			p, err := app.loadPortfolio()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if !output.IsJSON() && !pricerange.Parse(priceRange).Valid() {
				output.Warning("Price range %q not understood; nothing will match.", priceRange)
			}

			var results []holding.Snapshot
			for s := range p.Search(symbol, keywords, priceRange) {
				results = append(results, s)
			}

			if output.IsJSON() {
				if results == nil {
					results = []holding.Snapshot{}
				}
				return output.JSON(results)
			}
			if len(results) == 0 {
				output.Info("No matching holdings.")
				return nil
			}
			for _, s := range results {
				output.Println(s.String())
			}
			output.Dim("%d match(es)", len(results))
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "symbol to match")
	cmd.Flags().String("keywords", "", "name keywords, all required")
	cmd.Flags().String("range", "", "price range, e.g. 10, 10-, -10, 5-10.50")

	return cmd
}

func renderHoldings(output *Output, holdings []holding.Snapshot) {
	table := NewTable(output, "Type", "Symbol", "Name", "Qty", "Price", "Book Value", "Gain")
	for _, h := range holdings {
		table.AddRow(
			h.Kind.Label(),
			h.Symbol,
			TruncateString(h.Name, 32),
			fmt.Sprintf("%d", h.Quantity),
			FormatPrice(h.Price),
			output.Money(h.BookValue),
			output.FormatGain(h.Gain),
		)
	}
	table.Render()
}
