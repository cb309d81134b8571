package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	apperrors "eportfolio/internal/errors"
	"eportfolio/internal/holding"
	"eportfolio/internal/models"
	"eportfolio/internal/portfolio"
)

// addPortfolioCommands adds the commands that read or change holdings.
func addPortfolioCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newUpdateCmd(app))
	rootCmd.AddCommand(newListCmd(app))
	rootCmd.AddCommand(newGainCmd(app))
	rootCmd.AddCommand(newSearchCmd(app))
}

// parseQuantity parses a quantity argument.
func parseQuantity(s string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, apperrors.NewValidationError("quantity", s, "quantity must be a whole number")
	}
	return qty, nil
}

// parsePrice parses a price argument.
func parsePrice(s string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, apperrors.NewValidationError("price", s, "price must be a number")
	}
	return price, nil
}

func modelKind(k holding.Kind) models.Kind {
	return models.Kind(k.String())
}

func newBuyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <stock|mutualfund> <symbol> <quantity> <price>",
		Short: "Buy a stock or mutual fund",
		Long: `Buy units of a stock or mutual fund.

A stock buy adds a 9.99 commission to the book value; a mutual fund buy has
no fee. Buying a symbol already held adds to that holding: its existing type
and name are kept and its own fee rules apply.`,
		Example: `  eportfolio buy stock IBM 100 50 --name "International Business Machines"
  eportfolio buy mutualfund ABCFX 200 10 --name "Growth Fund"
  eportfolio buy stock IBM 10 55`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
			defer cancel()
			defer app.closeJournal()

			kind := args[0]
			symbol := strings.ToUpper(args[1])
			name, _ := cmd.Flags().GetString("name")

			qty, err := parseQuantity(args[2])
			if err != nil {
				output.Error("Invalid quantity: %s", args[2])
				return err
			}
			price, err := parsePrice(args[3])
			if err != nil {
				output.Error("Invalid price: %s", args[3])
				return err
			}

			p, err := app.loadPortfolio()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			before, getErr := p.Get(symbol)
			existing := getErr == nil
			if existing && name == "" {
				// The stored name is kept anyway; this only satisfies validation.
				name = before.Name
			}

			if err := p.Buy(kind, symbol, name, qty, price); err != nil {
				output.Error("Buy failed: %v", err)
				return err
			}

			after, err := p.Get(symbol)
			if err != nil {
				return err
			}
			cost := after.BookValue - before.BookValue

			if err := app.savePortfolio(ctx, p); err != nil {
				output.Error("%v", err)
				return err
			}
			app.record(ctx, models.NewTransaction(models.SideBuy, modelKind(after.Kind), symbol, qty, price, cost))

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"holding": after,
					"cost":    cost,
					"new":     !existing,
				})
			}

			if existing && holding.ParseKind(kind) != after.Kind {
				output.Warning("%s is held as a %s; the purchase uses its %s fee rules", symbol, after.Kind.Label(), after.Kind.Label())
			}
			output.Success("Bought %d %s at %s", qty, symbol, FormatPrice(price))
			output.Printf("  Cost:       %s\n", output.Money(cost))
			output.Printf("  Quantity:   %d\n", after.Quantity)
			output.Printf("  Book Value: %s\n", output.Money(after.BookValue))
			return nil
		},
	}

	cmd.Flags().String("name", "", "holding name (required for a new symbol)")

	return cmd
}

func newSellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <symbol> <quantity> <price>",
		Short: "Sell units of a holding",
		Long: `Sell units of a holding and print the proceeds.

A stock sale deducts a 9.99 commission from the proceeds, a mutual fund sale
a 45.00 redemption fee. The book value falls by the average cost of the units
sold. A holding sold down to zero is removed.`,
		Example: `  eportfolio sell IBM 50 60
  eportfolio sell ABCFX 200 12`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
			defer cancel()
			defer app.closeJournal()

			symbol := strings.ToUpper(args[0])
			qty, err := parseQuantity(args[1])
			if err != nil {
				output.Error("Invalid quantity: %s", args[1])
				return err
			}
			price, err := parsePrice(args[2])
			if err != nil {
				output.Error("Invalid price: %s", args[2])
				return err
			}

			p, err := app.loadPortfolio()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			before, err := p.Get(symbol)
			if err != nil {
				output.Error("No holding for %s", symbol)
				return err
			}

			proceeds, err := p.Sell(symbol, qty, price)
			if err != nil {
				output.Error("Sell failed: %v", err)
				return err
			}
			_, getErr := p.Get(symbol)
			removed := getErr != nil

			if err := app.savePortfolio(ctx, p); err != nil {
				output.Error("%v", err)
				return err
			}
			app.record(ctx, models.NewTransaction(models.SideSell, modelKind(before.Kind), symbol, qty, price, proceeds))

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":   symbol,
					"quantity": qty,
					"price":    price,
					"proceeds": proceeds,
					"removed":  removed,
				})
			}

			output.Success("Sold %d %s at %s", qty, symbol, FormatPrice(price))
			output.Printf("  Proceeds:   %s\n", output.Money(proceeds))
			if removed {
				output.Dim("  %s sold out and removed from the portfolio", symbol)
			}
			return nil
		},
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [symbol price]",
		Short: "Update market prices",
		Long: `Update the market price of one holding, or with --all prompt for a new
price for every holding in turn.`,
		Example: `  eportfolio update IBM 61.25
  eportfolio update --all`,
		Args: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
			defer cancel()
			defer app.closeJournal()

			all, _ := cmd.Flags().GetBool("all")

			p, err := app.loadPortfolio()
			if err != nil {
				output.Error("%v", err)
				return err
			}

			if all {
				return app.updateAll(cmd, output, p)
			}

			symbol := strings.ToUpper(args[0])
			price, err := parsePrice(args[1])
			if err != nil {
				output.Error("Invalid price: %s", args[1])
				return err
			}
			if err := p.UpdatePrice(symbol, price); err != nil {
				output.Error("Update failed: %v", err)
				return err
			}
			snap, err := p.Get(symbol)
			if err != nil {
				return err
			}

			if err := app.savePortfolio(ctx, p); err != nil {
				output.Error("%v", err)
				return err
			}
			app.record(ctx, models.NewTransaction(models.SideUpdate, modelKind(snap.Kind), snap.Symbol, snap.Quantity, price, 0))

			if output.IsJSON() {
				return output.JSON(snap)
			}
			output.Success("%s price set to %s", snap.Symbol, FormatPrice(price))
			output.Printf("  Gain:       %s\n", output.FormatGain(snap.Gain))
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "prompt for a new price for every holding")

	return cmd
}

// updateAll prompts for every holding's price. Prices entered before an
// error are kept and saved.
func (app *App) updateAll(cmd *cobra.Command, output *Output, p *portfolio.Portfolio) error {
	if p.Len() == 0 {
		output.Info("No holdings to update.")
		return nil
	}

	prompt := cmd.OutOrStdout()
	if output.IsJSON() {
		prompt = cmd.ErrOrStderr()
	}
	src := newPromptSource(cmd.InOrStdin(), prompt, output)

	before := p.List()
	updateErr := p.UpdateAllPrices(src)
	after := p.List()

	// The journal timeout starts once the user has finished typing.
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()

	var txs []*models.Transaction
	for i, s := range after {
		if s.Price != before[i].Price {
			txs = append(txs, models.NewTransaction(models.SideUpdate, modelKind(s.Kind), s.Symbol, s.Quantity, s.Price, 0))
		}
	}

	if len(txs) > 0 {
		if err := app.savePortfolio(ctx, p); err != nil {
			output.Error("%v", err)
			return err
		}
		app.record(ctx, txs...)
	}

	if updateErr != nil {
		output.Error("Update stopped: %v", updateErr)
		if len(txs) > 0 {
			output.Warning("%d price(s) entered before the stop were saved", len(txs))
		}
		return updateErr
	}

	if output.IsJSON() {
		return output.JSON(after)
	}
	output.Success("Updated %d holding(s)", len(after))
	output.Printf("  Total Gain: %s\n", output.FormatGain(p.TotalGain()))
	return nil
}

// promptSource asks the user for each price on an input stream.
type promptSource struct {
	scanner *bufio.Scanner
	prompt  io.Writer
	output  *Output
}

func newPromptSource(in io.Reader, prompt io.Writer, output *Output) *promptSource {
	return &promptSource{
		scanner: bufio.NewScanner(in),
		prompt:  prompt,
		output:  output,
	}
}

// Quote prompts until a positive number is entered. End of input is an
// error.
func (s *promptSource) Quote(kind holding.Kind, symbol string) (float64, error) {
	for {
		fmt.Fprintf(s.prompt, "New price for %s %s: ", kind.Label(), symbol)
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}

		text := strings.TrimSpace(s.scanner.Text())
		price, err := strconv.ParseFloat(text, 64)
		if err == nil {
			err = holding.ValidatePrice(price)
		}
		if err != nil {
			s.output.Error("Invalid price %q, enter a number greater than zero", text)
			continue
		}
		return price, nil
	}
}
