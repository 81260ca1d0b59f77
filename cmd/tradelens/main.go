// tradelens — economic-calendar ingestion and trade enrichment.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/openquants/tradelens/api"
	"github.com/openquants/tradelens/internal/calendar"
	"github.com/openquants/tradelens/internal/config"
	"github.com/openquants/tradelens/internal/correlate"
	"github.com/openquants/tradelens/internal/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tradelens",
	Short: "tradelens — economic-calendar ingestion and trade enrichment",
	Long: `tradelens scrapes an economic-calendar page into canonical event
records, stores them idempotently, and correlates them with recorded
trading sessions so each trade carries the macro events that happened
while it was open.`,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		setupLogging(cfg)
		return nil
	}

	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(compactCmd)
}

// setupLogging configures the global logger from config.
func setupLogging(cfg *config.Config) {
	level := log.ParseLevel(cfg.Logging.Level)
	if override, _ := rootCmd.PersistentFlags().GetString("log-level"); override != "" {
		level = log.ParseLevel(override)
	}

	logger := log.Logger{Level: level}
	if cfg.Logging.Format != "json" {
		logger.Writer = &log.ConsoleWriter{ColorOutput: true}
	}
	log.DefaultLogger = logger
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tradelens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Ingest Command ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch the calendar page and store extracted events",
	RunE: func(cmd *cobra.Command, args []string) error {
		dateFlag, _ := cmd.Flags().GetString("date")
		fileFlag, _ := cmd.Flags().GetString("file")

		day := time.Now().UTC()
		if dateFlag != "" {
			var err error
			day, err = time.Parse("2006-01-02", dateFlag)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateFlag, err)
			}
		}

		var markup string
		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("read markup file: %w", err)
			}
			markup = string(data)
		} else {
			if cfg.Source.URL == "" {
				return fmt.Errorf("no source URL configured and no --file given")
			}
			fetcher := calendar.NewFetcher(cfg.Source.URL)
			var err error
			markup, err = fetcher.FetchPage(cmd.Context(), day)
			if err != nil {
				return err
			}
		}

		extractor := calendar.NewExtractor(
			calendar.WithTitleColumn(cfg.Calendar.TitleColumn),
			calendar.WithReferenceYear(day.Year()),
		)
		events, report, err := extractor.Extract(markup)
		if err != nil {
			return err
		}
		if !report.TimezoneDetected {
			log.Warn().Msg("timezone not detected in page, assuming UTC")
		}
		if report.NoData() {
			log.Warn().Int("rows_scanned", report.RowsScanned).Msg("no events extracted from page")
			return nil
		}

		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		stored, err := st.UpsertEvents(cmd.Context(), events)
		if err != nil {
			return err
		}
		log.Info().
			Int("rows_scanned", report.RowsScanned).
			Int("rows_accepted", report.RowsAccepted).
			Int("stored", stored).
			Float64("offset_hours", report.OffsetHours).
			Msg("ingest complete")
		return nil
	},
}

// --- Events Command ---

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List stored events for a calendar day",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, _ := cmd.Flags().GetString("date")
		currency, _ := cmd.Flags().GetString("currency")
		impact, _ := cmd.Flags().GetString("impact")

		if day == "" {
			day = time.Now().UTC().Format("2006-01-02")
		}
		if _, err := time.Parse("2006-01-02", day); err != nil {
			return fmt.Errorf("invalid --date %q: %w", day, err)
		}

		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		var currencies, impacts []string
		if currency != "" {
			currencies = []string{currency}
		}
		if impact != "" {
			impacts = []string{impact}
		}

		events, err := st.EventsByDay(cmd.Context(), day, currencies, impacts)
		if err != nil {
			return err
		}
		return printJSON(events)
	},
}

// --- Correlate Command ---

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Attach stored events to trades by session window",
	Long: `Correlate reads trade contexts (date + session) from a JSON file
and prints, per trade, the High/Medium-impact events whose UTC time
falls inside the trade's session window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tradesFile, _ := cmd.Flags().GetString("trades")
		if tradesFile == "" {
			return fmt.Errorf("--trades file is required")
		}

		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		bc := correlate.NewBatchCorrelator(st, cfg.Calendar.Currencies, cfg.Correlate.Workers)
		results, err := bc.Run(cmd.Context(), &correlate.FileTradeSource{Path: tradesFile})
		if err != nil {
			return err
		}

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			log.Warn().Int("failed", failed).Int("total", len(results)).Msg("some trades left unenriched")
		}
		return printJSON(results)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := api.NewServer(cfg, st)
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(addr)
	},
}

// --- Compact Command ---

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Garbage-collect the event store value log",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		rewritten := 0
		for {
			err := st.Badger().RunValueLogGC(0.5)
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			if err != nil {
				return fmt.Errorf("value log GC: %w", err)
			}
			rewritten++
		}
		log.Info().Int("rewritten_files", rewritten).Msg("store compaction complete")
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("date", "", "calendar day to ingest (YYYY-MM-DD, default today)")
	ingestCmd.Flags().String("file", "", "read page markup from a local file instead of fetching")

	eventsCmd.Flags().String("date", "", "calendar day (YYYY-MM-DD, default today)")
	eventsCmd.Flags().String("currency", "", "filter by currency code")
	eventsCmd.Flags().String("impact", "", "filter by impact level (High, Medium, Low)")

	correlateCmd.Flags().String("trades", "", "JSON file with trade contexts")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
