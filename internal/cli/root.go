package cli

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/johnayoung/llm-fanout/internal/config"
	"github.com/johnayoung/llm-fanout/internal/orchestrator"
	"github.com/johnayoung/llm-fanout/internal/provider"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "llm-fanout",
	Short: "Fan one question out to several LLM providers and collect every answer",
	Long: `llm-fanout sends a single prompt to every configured LLM backend
concurrently, retries transient failures per provider, and aggregates
the answers into one result. A provider without an API key in the
environment is silently skipped.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// logConfig holds logging configuration shared by all commands.
type logConfig struct {
	Format string `env:"LOG_FORMAT" env-default:"text" env-description:"Log output format (text or json)"`
	Level  string `env:"LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
}

// newLogger creates an slog logger backed by zerolog and installs it as
// the process default.
func newLogger() *slog.Logger {
	var conf logConfig
	if err := cleanenv.ReadEnv(&conf); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load log config: %v\n", err)
		os.Exit(1)
	}

	var level slog.Level
	switch conf.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var zl zerolog.Logger
	if conf.Format == "json" {
		zl = zerolog.New(os.Stderr)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	handler := slogzerolog.Option{
		Level:  level,
		Logger: &zl,
	}.NewZerologHandler()

	logger := slog.New(handler)
	log.SetFlags(0)
	slog.SetDefault(logger)

	return logger
}

// buildOrchestrator wires configuration, clients, and the orchestrator.
func buildOrchestrator() (*orchestrator.Orchestrator, error) {
	// Credentials may live in a local .env; absence is fine.
	_ = godotenv.Load()

	logger := newLogger()

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	clients := provider.FromConfig(cfg, logger)
	return orchestrator.New(clients, orchestrator.WithLogger(logger)), nil
}
