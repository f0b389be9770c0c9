package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/internal/dirtree"
	"github.com/agentic-research/sitetree/internal/index"
	"github.com/agentic-research/sitetree/internal/outline"
	"github.com/agentic-research/sitetree/internal/topic"
)

var (
	indexTopics string
	indexAppend bool
)

func init() {
	indexCmd.Flags().StringVar(&indexTopics, "topics", "", "Topic hierarchy outline to index (default: the config's hierarchy)")
	indexCmd.Flags().BoolVar(&indexAppend, "append", false, "Add to an existing database instead of replacing it")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index <dir> <out.db>",
	Short: "Write a directory tree and its topic closure into a SQLite database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, dbPath := args[0], args[1]

		fs, root, err := dirtree.OpenOS(dir)
		if err != nil {
			return err
		}
		c := cfg
		c.KeepExtensions = true
		o, err := dirtree.NewReader(fs, c, logger).ReadOutline(root)
		if err != nil {
			return err
		}

		hierarchy := indexTopics
		if hierarchy == "" {
			hierarchy = cfg.Hierarchy
		}
		var closure *topic.Closure
		if hierarchy != "" {
			data, err := os.ReadFile(hierarchy)
			if err != nil && (indexTopics != "" || !errors.Is(err, os.ErrNotExist)) {
				return fmt.Errorf("read hierarchy: %w", err)
			}
			if err == nil {
				h, err := outline.NewCodec(cfg).Parse(string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", hierarchy, err)
				}
				closure = topic.Build(h)
			}
		}

		if !indexAppend {
			if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", dbPath, err)
			}
		}

		w, err := index.NewWriter(dbPath, logger)
		if err != nil {
			return err
		}
		abort := func(cause error) error {
			if err := w.Abort(); err != nil {
				logger.Warn("abort index", slog.Any("error", err))
			}
			if !indexAppend {
				_ = os.Remove(dbPath)
			}
			return cause
		}
		nodes, err := w.AddOutline(o)
		if err != nil {
			return abort(err)
		}
		pairs := 0
		if closure != nil {
			if pairs, err = w.AddClosure(closure); err != nil {
				return abort(err)
			}
		}
		if err := w.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d nodes and %d topic pairs into %s\n", nodes, pairs, dbPath)
		return nil
	},
}
