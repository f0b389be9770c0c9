package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/internal/preview"
)

var (
	serveMount string
	serveAddr  string
)

func init() {
	serveCmd.Flags().StringVar(&serveMount, "mount", "", "Also mount the preview at this path (requires sudo)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", preview.DefaultAddr, "NFS listen address")
	rootCmd.AddCommand(serveCmd)
}

// previewRoot is where the site is built inside the in-memory filesystem.
const previewRoot = "/site"

var serveCmd = &cobra.Command{
	Use:   "serve [source]",
	Short: "Build a site in memory and serve it read-only over NFS",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := cfg.Source
		if len(args) > 0 {
			source = args[0]
		}

		fs := memfs.New()
		res, err := buildSite(fs, previewRoot, source, cfg.Static, cfg)
		if err != nil {
			return err
		}

		srv, err := preview.NewServer(fs, previewRoot, serveAddr, logger)
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s (%d files, %d static) on NFS port %d\n",
			source, res.Files, res.Static, srv.Port())

		if serveMount != "" {
			if err := os.MkdirAll(serveMount, 0o755); err != nil {
				return fmt.Errorf("create mountpoint: %w", err)
			}
			if err := preview.Mount(srv.Port(), serveMount); err != nil {
				return err
			}
			defer func() {
				if err := preview.Unmount(serveMount); err != nil {
					logger.Warn("unmount failed", slog.String("path", serveMount), slog.Any("error", err))
				}
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Mounted at %s\n", serveMount)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		logger.Info("shutting down preview")
		return nil
	},
}
