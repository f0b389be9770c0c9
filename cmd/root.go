package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/api"
	"github.com/agentic-research/sitetree/internal/config"
)

var (
	configPath string
	verbose    bool

	// Resolved in PersistentPreRunE before any subcommand runs.
	cfg    api.Config
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to sitetree.hcl (default: search upward from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:           "sitetree",
	Short:         "sitetree: directory trees as outline text, and back",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		loaded, err := config.NewLoader(logger).Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// outputPerm is applied after atomic.WriteFile, which creates files 0600.
const outputPerm = 0o644

// emit writes text to path atomically, or to the command's stdout when
// path is empty.
func emit(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, outputPerm); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	logger.Debug("wrote output", slog.String("path", path), slog.Int("bytes", len(text)))
	return nil
}
