// Package cli provides the command-line interface for the Zizi chat client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/zizi-chat/internal/client"
	"github.com/raphaelgruber/zizi-chat/internal/config"
	"github.com/raphaelgruber/zizi-chat/internal/conversation"
	"github.com/raphaelgruber/zizi-chat/internal/metrics"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string
	baseURL    string
	verbose    bool

	// Global config and backend client
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	apiClient  *client.Client
	collector  *metrics.Collector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zizi",
	Short: "Chat with the Zizi Afrique knowledge assistant",
	Long: `Zizi is a terminal client for the Zizi Afrique chatbot.

Ask questions, see the cited source for each answer, rate answers with a
thumbs up or down, and regenerate answers you are not happy with.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if baseURL != "" {
			cfg.BaseURL = baseURL
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		// Console logging would tear the full-screen UI, so it is file-only there.
		var console io.Writer
		if verbose && !usesTUI(cmd) {
			console = os.Stderr
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel, console)
		logger = logger.With("session", uuid.NewString()[:8])

		logger.Info("zizi starting",
			"version", Version,
			"command", cmd.Name(),
			"base_url", cfg.BaseURL,
		)

		collector = metrics.NewCollector()
		apiClient = client.New(cfg.BaseURL, client.Options{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
			Logger:    logger,
		})
		return nil
	},
}

// newConversation creates a conversation wired to the configured backend.
func newConversation(observer func(conversation.Snapshot)) *conversation.Conversation {
	return conversation.New(apiClient, conversation.Options{
		Greeting: cfg.Greeting,
		Logger:   logger,
		Metrics:  collector,
		Observer: observer,
	})
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	defer finish()
	return rootCmd.ExecuteContext(ctx)
}

// finish logs session statistics and closes the log file, also after a
// failed command.
func finish() {
	if collector != nil {
		logger.Info("session finished", collector.Snapshot().LogAttrs()...)
		collector = nil
	}
	if logCleanup != nil {
		if err := logCleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		logCleanup = nil
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $ZIZI_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "chat backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zizi %s\n", Version)
	},
}
