package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/internal/dirtree"
	"github.com/agentic-research/sitetree/internal/query"
)

var queryHeadlines bool

func init() {
	queryCmd.Flags().BoolVar(&queryHeadlines, "headlines", false, "Print only the headline of each match")
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <dir> <jsonpath>",
	Short: "Evaluate a JSONPath expression against a directory tree",
	Long: `Reads dir into an outline and evaluates the expression against its JSON
form: a list of leaf headline strings and {"headline", "children"} objects.
Each match is printed as one line of JSON.`,
	Example: `  sitetree query site '$[?(@.headline == "posts")].children[*].headline'`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, root, err := dirtree.OpenOS(args[0])
		if err != nil {
			return err
		}
		o, err := dirtree.NewReader(fs, cfg, logger).ReadOutline(root)
		if err != nil {
			return err
		}

		matches, err := query.NewWalker().QueryOutline(o, args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if queryHeadlines {
			for _, h := range query.Headlines(matches) {
				fmt.Fprintln(out, h)
			}
			return nil
		}
		for _, m := range matches {
			fmt.Fprintln(out, oj.JSON(m.Context(), &oj.Options{Sort: true}))
		}
		return nil
	},
}
