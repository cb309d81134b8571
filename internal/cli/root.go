package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"eportfolio/internal/config"
	apperrors "eportfolio/internal/errors"
	"eportfolio/internal/logging"
	"eportfolio/internal/models"
	"eportfolio/internal/portfolio"
	"eportfolio/internal/store"
	"eportfolio/pkg/utils"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-01-01"
)

// journalTimeout bounds every journal call made by a command.
const journalTimeout = 10 * time.Second

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Journal store.Journal

	// openJournal is replaced in tests.
	openJournal func(path string) (store.Journal, error)
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		openJournal: func(path string) (store.Journal, error) {
			return store.NewSQLiteStore(path)
		},
	}

	rootCmd := &cobra.Command{
		Use:   "eportfolio",
		Short: "Track stock and mutual fund holdings",
		Long: `eportfolio tracks a portfolio of stocks and mutual funds.

Buys and sells apply each instrument's fees to the book value, prices can be
updated one at a time or interactively for every holding, and holdings can be
searched by symbol, name keywords and price range.

Holdings are kept in a plain text file; executed transactions are also
recorded in a SQLite journal shown by 'eportfolio history'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if file, _ := cmd.Flags().GetString("file"); file != "" {
				app.Config.Portfolio.File = file
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/eportfolio)")
	rootCmd.PersistentFlags().String("file", "", "holdings file (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addPortfolioCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

// output builds an Output honouring the UI settings.
func (app *App) output(cmd *cobra.Command) *Output {
	o := NewOutput(cmd)
	o.colorEnabled = o.colorEnabled && app.Config.UI.ColorEnabled
	if app.Config.UI.CurrencySymbol != "" {
		o.currency = app.Config.UI.CurrencySymbol
	}
	return o
}

// loadPortfolio reads the holdings file. A partially loaded portfolio is
// reported as an error so that a later save cannot drop the unread records.
func (app *App) loadPortfolio() (*portfolio.Portfolio, error) {
	p := portfolio.New(app.Logger)
	if err := p.LoadFile(app.Config.Portfolio.File); err != nil {
		var perr *apperrors.ParseError
		if apperrors.As(err, &perr) {
			app.Logger.Debug().Int("line", perr.Line).Str("field", perr.Field).Msg("Holdings file is malformed")
		}
		return nil, apperrors.Wrap(err, "loading portfolio")
	}
	return p, nil
}

// savePortfolio writes the holdings file and notes the save in the journal.
func (app *App) savePortfolio(ctx context.Context, p *portfolio.Portfolio) error {
	path := app.Config.Portfolio.File
	if err := p.SaveFile(path); err != nil {
		return apperrors.Wrapf(err, "saving portfolio to %s", path)
	}

	if j := app.journal(ctx); j != nil {
		if err := j.SetLastSave(ctx, absPath(path), time.Now().UTC()); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to record save time")
		}
	}
	return nil
}

// journal opens the journal on first use. It returns nil when the journal is
// disabled or cannot be opened; the portfolio works without it.
func (app *App) journal(ctx context.Context) store.Journal {
	if app.Journal != nil {
		return app.Journal
	}
	if !app.Config.Journal.Enabled {
		return nil
	}

	j, err := utils.RetryWithResult(ctx, journalRetryConfig(), func() (store.Journal, error) {
		return app.openJournal(app.Config.Journal.Path)
	})
	if err != nil {
		app.Logger.Warn().Err(err).Str("path", app.Config.Journal.Path).
			Msg("Failed to open journal, transactions will not be recorded")
		return nil
	}
	app.Journal = j
	app.Logger.Debug().Str("path", app.Config.Journal.Path).Msg("Journal opened")
	return j
}

// closeJournal closes the journal if it was opened.
func (app *App) closeJournal() {
	if app.Journal == nil {
		return
	}
	if err := app.Journal.Close(); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to close journal")
	}
	app.Journal = nil
}

// record writes transactions to the journal. Failures are logged, not
// returned: the holdings file is already saved.
func (app *App) record(ctx context.Context, txs ...*models.Transaction) {
	j := app.journal(ctx)
	if j == nil {
		return
	}
	for _, tx := range txs {
		err := utils.Retry(ctx, journalRetryConfig(), func() error {
			return j.LogTransaction(ctx, tx)
		})
		if err != nil {
			logging.WithSymbol(app.Logger, tx.Symbol).Warn().Err(err).
				Str("side", string(tx.Side)).Msg("Failed to journal transaction")
		}
	}
}

// journalRetryConfig retries only database errors such as a locked file.
func journalRetryConfig() utils.RetryConfig {
	cfg := utils.DefaultRetryConfig()
	cfg.Retryable = func(err error) bool {
		return apperrors.Is(err, apperrors.ErrDatabaseError)
	}
	return cfg
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("eportfolio v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := app.output(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Dir})
			} else {
				output.Println(app.Config.Dir)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Portfolio")
	output.Printf("  File:            %s\n", cfg.Portfolio.File)
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled:         %v\n", cfg.Journal.Enabled)
	output.Printf("  Path:            %s\n", cfg.Journal.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %v\n", cfg.Logging.File)
	output.Printf("  File Path:       %s\n", cfg.Logging.FilePath)
	output.Println()

	output.Bold("UI")
	output.Printf("  Color:           %v\n", cfg.UI.ColorEnabled)
	output.Printf("  Currency Symbol: %s\n", cfg.UI.CurrencySymbol)

	return nil
}
