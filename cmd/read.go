package cmd

import (
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/internal/dirtree"
)

var (
	readOutput string
	readJSON   bool
)

func init() {
	readCmd.Flags().StringVarP(&readOutput, "output", "o", "", "Write to file instead of stdout")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Print the tree as JSON instead of outline text")
	rootCmd.AddCommand(readCmd)
}

var readCmd = &cobra.Command{
	Use:   "read <dir>",
	Short: "Dump a directory tree as outline text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, root, err := dirtree.OpenOS(args[0])
		if err != nil {
			return err
		}
		r := dirtree.NewReader(fs, cfg, logger)

		if !readJSON {
			text, err := r.Read(root)
			if err != nil {
				return err
			}
			return emit(cmd, readOutput, text)
		}

		o, err := r.ReadOutline(root)
		if err != nil {
			return err
		}
		return emit(cmd, readOutput, oj.JSON(o.Value(), &oj.Options{Indent: 2, Sort: true})+"\n")
	},
}
