package main

import (
	"fmt"
	"os"
	"strings"

	"eportfolio/internal/cli"
	"eportfolio/internal/config"
	"eportfolio/internal/logging"
)

func main() {
	cfg, err := config.Load(configDirFromArgs(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.LogConfig())
	logger.Debug().Str("config_dir", cfg.Dir).Str("file", cfg.Portfolio.File).Msg("Configuration loaded")

	if err := cli.NewRootCmd(cfg, logger).Execute(); err != nil {
		logger.Debug().Err(err).Msg("Command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDirFromArgs finds --config before cobra parses flags, since the
// configuration has to exist before the command tree is built.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
