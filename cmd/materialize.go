package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/internal/dirtree"
)

func init() {
	rootCmd.AddCommand(materializeCmd)
}

var materializeCmd = &cobra.Command{
	Use:   "materialize <outline.txt|-> <outdir>",
	Short: "Write outline text out as a directory tree (outdir is wiped first)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read outline: %w", err)
		}

		fs, root, err := dirtree.OpenOS(args[1])
		if err != nil {
			return err
		}
		if err := dirtree.NewMaterializer(fs, cfg, logger).MaterializeText(root, string(data)); err != nil {
			return err
		}
		logger.Info("materialized", slog.String("output", args[1]))
		return nil
	},
}
