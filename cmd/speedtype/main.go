// Package main provides the CLI entrypoint for speedtype.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/recorder"
	"github.com/verte-zerg/speedtype/internal/store"
	"github.com/verte-zerg/speedtype/internal/textsource"
	"github.com/verte-zerg/speedtype/internal/tui"
	"github.com/verte-zerg/speedtype/internal/wordlist"
)

const (
	defaultSource   = model.SourceQuote
	defaultWords    = 30
	defaultCaps     = 0.0
	defaultPunct    = 0.0
	defaultTickMs   = 100
	defaultPunctSet = ".,!?;:"
)

var (
	practiceUsername string
	practiceSource   string
	practiceTextFile string
	practiceWordList string
	practiceWords    int
	practiceCaps     float64
	practicePunct    float64
	practicePunctSet string
	practiceTickMs   int
	practiceQuoteURL string

	dbPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "speedtype",
		Short:         "Typing speed tests in the terminal and over HTTP",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: XDG data dir)")

	flags := rootCmd.Flags()
	flags.StringVarP(&practiceUsername, "user", "u", "", "save results under this username")
	flags.StringVar(&practiceSource, "source", defaultSource, "text source: quote, fallback, custom, words")
	flags.StringVar(&practiceTextFile, "text-file", "", "file with custom text (source=custom)")
	flags.StringVar(&practiceWordList, "word-list", "", "word list file, one word per line (source=words)")
	flags.IntVar(&practiceWords, "words", defaultWords, "words per generated text (source=words)")
	flags.Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	flags.Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	flags.StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	flags.IntVar(&practiceTickMs, "tick-ms", defaultTickMs, "live metrics refresh interval in milliseconds")
	flags.StringVar(&practiceQuoteURL, "quote-url", textsource.DefaultQuoteURL, "quote API endpoint")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newQuoteCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := practiceConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	src, err := buildPracticeSource(cfg, nil)
	if err != nil {
		return err
	}

	var rec *recorder.Recorder
	if cfg.Username != "" {
		st, err := openStore(fileCfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		rec = recorder.New(st, nil)
	}

	ui := tui.NewModel(cfg, src, rec)
	defer ui.Close()
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func practiceConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	p := fileCfg.Practice
	applyStringConfig(cmd, "user", &practiceUsername, p.Username)
	applyStringConfig(cmd, "source", &practiceSource, p.Source)
	applyStringConfig(cmd, "text-file", &practiceTextFile, p.TextFile)
	applyStringConfig(cmd, "word-list", &practiceWordList, p.WordList)
	applyIntConfig(cmd, "words", &practiceWords, p.Words)
	applyFloatConfig(cmd, "caps", &practiceCaps, p.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, p.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, p.PunctSet)
	applyIntConfig(cmd, "tick-ms", &practiceTickMs, p.TickMs)
	applyStringConfig(cmd, "quote-url", &practiceQuoteURL, p.QuoteURL)

	cfg := model.Config{
		Username:     strings.TrimSpace(practiceUsername),
		Source:       practiceSource,
		TextFile:     practiceTextFile,
		WordListPath: practiceWordList,
		Words:        practiceWords,
		CapsPct:      practiceCaps,
		PunctPct:     practicePunct,
		PunctSet:     practicePunctSet,
		TickInterval: time.Duration(practiceTickMs) * time.Millisecond,
		QuoteURL:     practiceQuoteURL,
	}
	if cfg.WordListPath == "" {
		cfg.WordListPath = config.DefaultWordListPath()
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// buildPracticeSource resolves the configured text source. onFallback may be nil.
func buildPracticeSource(cfg model.Config, onFallback func(error)) (textsource.Source, error) {
	switch cfg.Source {
	case model.SourceQuote:
		quotable := textsource.NewQuotable(textsource.QuotableOptions{URL: cfg.QuoteURL})
		return textsource.NewFallback(quotable, textsource.OnFallback(onFallback)), nil
	case model.SourceFallback:
		return textsource.NewFallback(nil), nil
	case model.SourceCustom:
		q, err := textsource.FromFile(cfg.TextFile)
		if err != nil {
			return nil, err
		}
		return textsource.Fixed{Quote: q}, nil
	case model.SourceWords:
		words, err := wordlist.LoadWords(cfg.WordListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list %s: %w", cfg.WordListPath, err)
		}
		return textsource.NewWords(words, generator.Options{
			Count:    cfg.Words,
			CapsPct:  cfg.CapsPct,
			PunctPct: cfg.PunctPct,
			PunctSet: []rune(cfg.PunctSet),
		}, nil), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

func validateConfig(cfg model.Config) error {
	if cfg.Username != "" {
		if _, err := store.NormalizeUsername(cfg.Username); err != nil {
			return fmt.Errorf("--user: %w", err)
		}
	}
	switch cfg.Source {
	case model.SourceQuote, model.SourceFallback, model.SourceWords:
	case model.SourceCustom:
		if cfg.TextFile == "" {
			return fmt.Errorf("--text-file is required for source %q", model.SourceCustom)
		}
	default:
		return fmt.Errorf("--source must be one of quote, fallback, custom, words")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("--tick-ms must be > 0")
	}
	return nil
}

func resolveDBPath(fileCfg config.FileConfig) string {
	if dbPath != "" {
		return dbPath
	}
	if fileCfg.Storage.Path != nil && *fileCfg.Storage.Path != "" {
		return *fileCfg.Storage.Path
	}
	return config.DefaultDBPath()
}

func openStore(fileCfg config.FileConfig) (*store.Store, error) {
	st, err := store.Open(resolveDBPath(fileCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print a passage from the configured source",
		Args:  cobra.NoArgs,
		RunE:  runQuoteCmd,
	}
	flags := cmd.Flags()
	flags.StringVar(&practiceSource, "source", defaultSource, "text source: quote, fallback, custom, words")
	flags.StringVar(&practiceTextFile, "text-file", "", "file with custom text (source=custom)")
	flags.StringVar(&practiceWordList, "word-list", "", "word list file, one word per line (source=words)")
	flags.IntVar(&practiceWords, "words", defaultWords, "words per generated text (source=words)")
	flags.StringVar(&practiceQuoteURL, "quote-url", textsource.DefaultQuoteURL, "quote API endpoint")
	return cmd
}

func runQuoteCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := practiceConfig(cmd, fileCfg)
	if err != nil {
		return err
	}
	src, err := buildPracticeSource(cfg, func(err error) {
		logErrf("quote source failed, using built-in passage: %v\n", err)
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	q, err := src.FetchRandomText(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch text: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, q.Content); err != nil {
		return err
	}
	if q.Author != "" {
		if _, err := fmt.Fprintf(out, "  ~ %s (%s, %d chars)\n", q.Author, q.Source, q.Length); err != nil {
			return err
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
