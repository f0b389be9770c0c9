package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/api"
	"github.com/agentic-research/sitetree/internal/dirtree"
	"github.com/agentic-research/sitetree/internal/outline"
)

var buildCmd = &cobra.Command{
	Use:   "build [source] [output]",
	Short: "Read a site directory and materialize it into the output directory",
	Long: `Reads the source tree into outline text, parses it back and
materializes it into output, then copies the static directory over it.
Output is wiped first. Paths default to the config's source and output.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, output := cfg.Source, cfg.Output
		if len(args) > 0 {
			source = args[0]
		}
		if len(args) > 1 {
			output = args[1]
		}
		if err := api.CheckOutput(source, output); err != nil {
			return err
		}

		start := time.Now()
		fs, root, err := dirtree.OpenOS(output)
		if err != nil {
			return err
		}
		res, err := buildSite(fs, root, source, cfg.Static, cfg)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Built %s -> %s: %d files, %d static (%v)\n",
			source, output, res.Files, res.Static, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

type buildResult struct {
	Files  int
	Static int
}

// buildSite reads source, round-trips it through outline text and
// materializes it at dstRoot of dst, then copies static over it when that
// directory exists.
func buildSite(dst billy.Filesystem, dstRoot, source, static string, c api.Config) (buildResult, error) {
	var res buildResult

	// File names must survive the trip for the materializer to classify them.
	c.KeepExtensions = true

	srcFS, srcRoot, err := dirtree.OpenOS(source)
	if err != nil {
		return res, err
	}
	text, err := dirtree.NewReader(srcFS, c, logger).Read(srcRoot)
	if err != nil {
		return res, err
	}

	o, err := outline.NewCodec(c).Parse(text)
	if err != nil {
		return res, err
	}
	_ = o.Walk(func(_ int, n *outline.Node) error {
		if dirtree.Classify(n.Headline) == dirtree.KindFile {
			res.Files++
			return outline.SkipChildren
		}
		return nil
	})

	if err := dirtree.NewMaterializer(dst, c, logger).Materialize(dstRoot, o); err != nil {
		return res, err
	}

	if static == "" {
		return res, nil
	}
	info, err := os.Stat(static)
	if err != nil || !info.IsDir() {
		logger.Debug("no static directory", slog.String("path", static))
		return res, nil
	}
	staticFS, staticRoot, err := dirtree.OpenOS(static)
	if err != nil {
		return res, err
	}
	res.Static, err = dirtree.CopyTree(staticFS, staticRoot, dst, dstRoot)
	return res, err
}
