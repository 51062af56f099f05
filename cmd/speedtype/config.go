package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/textsource"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# speedtype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# username = "ada"        # Save results under this name (empty: not saved)
# source = %q          # quote, fallback, custom or words
# text-file = ""          # Custom text file (source = "custom")
# word-list = %q
# words = %d              # Words per generated text (source = "words")
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q
# tick-ms = %d           # Live metrics refresh interval
# quote-url = %q

[server]
# addr = %q
# allowed-origin = ""     # CORS origin; "*" allows any
# quote-url = %q
# quote-rate = %.1f       # Upstream quote requests per second
# redis-addr = ""         # Enables the shared leaderboard

[storage]
# path = %q
`,
		defaultSource,
		config.DefaultWordListPath(),
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultTickMs,
		textsource.DefaultQuoteURL,
		defaultAddr,
		textsource.DefaultQuoteURL,
		defaultQuoteRate,
		config.DefaultDBPath(),
	)
}
