package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# eportfolio configuration

[portfolio]
# Holdings file. Defaults to portfolio.txt next to this file.
# file = "/path/to/portfolio.txt"

[journal]
# Record every buy, sell and price update in a SQLite journal
enabled = true
# path = "/path/to/journal.db"

[logging]
# Level: debug, info, warn, error
level = "warn"
# Write human-readable logs to stderr
console = true
# Write JSON logs to a rotating file
file = true
# Rotation limits
max_size = 10
max_backups = 3
max_age = 30

[ui]
# Enable colored output
color_enabled = true
# Prefix for money amounts
currency_symbol = "$"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
