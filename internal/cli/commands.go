package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/dyike/stockinfo/config"
	"github.com/dyike/stockinfo/internal/api"
	"github.com/dyike/stockinfo/internal/controller"
	"github.com/dyike/stockinfo/internal/dataflows"
	"github.com/dyike/stockinfo/internal/display"
	"github.com/dyike/stockinfo/internal/logger"
	"github.com/dyike/stockinfo/internal/models"
	"github.com/dyike/stockinfo/internal/tui"
)

// Command annotations read by the root PersistentPreRunE.
const (
	annotationInteractive    = "interactive"
	annotationSkipValidation = "skip_validation"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	// Initialize configuration early
	cfg := config.DefaultConfig()

	var (
		apiURL string
		debug  bool
	)

	rootCmd := &cobra.Command{
		Use:   "stockinfo",
		Short: "stockinfo - search stocks and view their fundamentals",
		Long: `stockinfo searches stock symbols as you type and shows the profile,
financial ratios and yearly returns of the one you pick.
Without a subcommand it starts the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{annotationInteractive: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("api-url") {
				cfg.APIBaseURL = strings.TrimRight(apiURL, "/")
			}
			if debug {
				cfg.Debug = true
			}
			if cmd.Annotations[annotationSkipValidation] == "" {
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
			}
			return initLogging(cfg, cmd.Annotations[annotationInteractive] != "")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start the terminal UI
			return runTUI(cfg)
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newTUICmd(cfg))
	rootCmd.AddCommand(newLookupCmd(cfg))
	rootCmd.AddCommand(newShowCmd(cfg))
	rootCmd.AddCommand(newSearchCmd(cfg))
	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", cfg.APIBaseURL, "Base URL of the stock info backend")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return rootCmd
}

func newTUICmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Start the interactive terminal UI",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cfg)
		},
	}
}

func newLookupCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup",
		Short: "Search with prompts, then pick a suggestion to fetch",
		Long: `Prompt for a query, list the matching symbols and fetch the one you select.
Choosing the last entry fetches the typed text as a symbol.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationInteractive: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runLookup(cmd.Context(), cfg, cmd.OutOrStdout())
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		},
	}
}

func newShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show SYMBOL",
		Short: "Fetch and print the detail of a symbol",
		Long: `Fetch the profile, financial ratios and yearly returns of SYMBOL.
Example: stockinfo show aapl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cfg, cmd.OutOrStdout(), args[0])
		},
	}
}

func newSearchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Print the symbols matching QUERY",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cfg, cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend",
		Long: `Serve /search and /stock from the configured market data provider.
The fmp provider needs FMP_API_KEY; yahoo needs no key but cannot search.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("listen"); cmd.Flags().Changed("listen") {
				cfg.ListenAddr = addr
			}
			if p, _ := cmd.Flags().GetString("provider"); cmd.Flags().Changed("provider") {
				cfg.Provider = strings.ToLower(p)
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := dataflows.NewProvider(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			DisplayInfo(cmd.OutOrStdout(), fmt.Sprintf("Serving %s data on %s", provider.Name(), cfg.ListenAddr))
			return api.NewServer(cfg, provider).Run(ctx)
		},
	}

	cmd.Flags().String("listen", cfg.ListenAddr, "Address to listen on")
	cmd.Flags().String("provider", cfg.Provider, "Market data provider (fmp or yahoo)")

	return cmd
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Inspect the settings loaded from the environment and .env",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:         "show",
		Short:       "Show current configuration",
		Annotations: map[string]string{annotationSkipValidation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration",
		Annotations: map[string]string{annotationSkipValidation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), cfg)
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{annotationSkipValidation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockinfo v%s\n", Version)
		},
	}
}

// initLogging routes logs to the rotating file only while a command owns
// the terminal.
func initLogging(cfg *config.Config, interactive bool) error {
	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	return logger.Init(logger.Config{
		Level:          level,
		Format:         cfg.LogFormat,
		Console:        !interactive,
		FileEnabled:    cfg.LogFileEnabled || interactive,
		FilePath:       cfg.LogDir,
		RotationSize:   10,
		RetentionDays:  7,
		ServiceName:    "stockinfo",
		ServiceVersion: Version,
	})
}

func sessionOptions(cfg *config.Config) []controller.Option {
	return []controller.Option{
		controller.WithDebounce(cfg.Debounce),
		controller.WithLogger(logger.Component("controller")),
	}
}

// newWatchedSession creates a session against the configured backend whose
// views land in the returned watch.
func newWatchedSession(cfg *config.Config) (*controller.Session, *watch) {
	client := dataflows.NewStockAPIClient(cfg.APIBaseURL, cfg.RequestTimeout)
	w := newWatch()
	session := controller.NewSession(reportingSearcher{next: client, watch: w}, client, w, sessionOptions(cfg)...)
	return session, w
}

// waitBudget bounds how long a command waits for one lookup or fetch.
func waitBudget(cfg *config.Config) time.Duration {
	return cfg.Debounce + cfg.RequestTimeout + time.Second
}

func runTUI(cfg *config.Config) error {
	client := dataflows.NewStockAPIClient(cfg.APIBaseURL, cfg.RequestTimeout)
	return tui.Run(client, client, sessionOptions(cfg)...)
}

func runShow(ctx context.Context, cfg *config.Config, out io.Writer, arg string) error {
	symbol := models.NormalizeSymbol(arg)
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	session, w := newWatchedSession(cfg)
	defer session.Close()

	session.Edit(symbol)
	session.Submit()

	ctx, cancel := context.WithTimeout(ctx, waitBudget(cfg))
	defer cancel()

	state, err := w.waitDetail(ctx, symbol)
	if err != nil {
		return err
	}
	if state.Phase == controller.PhaseFailed {
		return state.Err
	}
	fmt.Fprintln(out, display.RenderStock(state.Detail, display.TabAll))
	return nil
}

func runSearch(ctx context.Context, cfg *config.Config, out io.Writer, text string) error {
	query := strings.ToUpper(text)
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	session, w := newWatchedSession(cfg)
	defer session.Close()

	session.Edit(query)

	ctx, cancel := context.WithTimeout(ctx, waitBudget(cfg))
	defer cancel()

	view, err := w.waitSuggestions(ctx, query)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, display.RenderSuggestionTable(view.Items))
	return nil
}

func runLookup(ctx context.Context, cfg *config.Config, out io.Writer) error {
	DisplayBanner(out)

	for {
		if err := lookupOnce(ctx, cfg, out); err != nil {
			return err
		}

		again, err := PromptForAnotherLookup()
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		fmt.Fprintln(out)
	}
}

// lookupOnce runs one query, select and fetch round. Fetch failures are
// shown and do not end the loop.
func lookupOnce(ctx context.Context, cfg *config.Config, out io.Writer) error {
	query, err := PromptForQuery()
	if err != nil {
		return err
	}

	session, w := newWatchedSession(cfg)
	defer session.Close()

	session.Edit(query)

	waitCtx, cancel := context.WithTimeout(ctx, waitBudget(cfg))
	view, err := w.waitSuggestions(waitCtx, query)
	cancel()
	if err != nil {
		DisplayInfo(out, "No suggestions available: "+err.Error())
	}

	sel, picked, err := PromptForSuggestion(query, view.Items)
	if err != nil {
		return err
	}

	var started bool
	if picked {
		started = session.Pick(sel)
	} else {
		started = session.Submit()
	}
	if !started {
		DisplayInfo(out, "Nothing to fetch.")
		return nil
	}
	symbol := session.Detail().State.Symbol

	waitCtx, cancel = context.WithTimeout(ctx, waitBudget(cfg))
	defer cancel()

	state, err := w.waitDetail(waitCtx, symbol)
	if err != nil {
		DisplayError(out, err)
		return nil
	}
	fmt.Fprintln(out, display.RenderDetail(state, display.TabAll))
	return nil
}

// showConfig displays the current configuration
func showConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, bannerStyle.Render("Current stockinfo configuration"))

	displaySetting(out, "API URL", cfg.APIBaseURL)
	displaySetting(out, "Debounce", cfg.Debounce)
	displaySetting(out, "Request timeout", cfg.RequestTimeout)
	fmt.Fprintln(out)

	displaySetting(out, "Listen address", cfg.ListenAddr)
	displaySetting(out, "Provider", cfg.Provider)
	if cfg.FMPAPIKey != "" {
		displaySetting(out, "FMP API key", "configured")
	} else {
		displaySetting(out, "FMP API key", "not configured")
	}
	displaySetting(out, "FMP base URL", cfg.FMPBaseURL)
	displaySetting(out, "Search limit", cfg.SearchLimit)
	displaySetting(out, "History years", cfg.HistoryYears)
	displaySetting(out, "CORS origins", strings.Join(cfg.CORSOrigins, ", "))
	fmt.Fprintln(out)

	displaySetting(out, "Log level", cfg.LogLevel)
	displaySetting(out, "Log format", cfg.LogFormat)
	displaySetting(out, "Log to file", cfg.LogFileEnabled)
	displaySetting(out, "Log directory", cfg.LogDir)
	displaySetting(out, "Debug", cfg.Debug)
}

// validateConfig fails on settings that break the client. A backend that
// cannot be built is only a warning since the client does not need one.
func validateConfig(out io.Writer, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	if _, err := dataflows.NewProvider(cfg); err != nil {
		DisplayInfo(out, "Warning: serve will fail: "+err.Error())
		DisplaySuccess(out, "Client configuration is valid.")
		return nil
	}

	DisplaySuccess(out, "Configuration is valid.")
	return nil
}
