package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/internal/index"
)

var showTag string

func init() {
	showCmd.Flags().StringVar(&showTag, "tag", "", "Print the topics recorded for a tag")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <db> [file]",
	Short: "Read back a database written by index",
	Long: `Without a file, prints the node counts and every indexed file path.
With a file path, prints that file's content as the materializer would
write it. --tag prints the topics of one tag instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := index.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		out := cmd.OutOrStdout()
		switch {
		case showTag != "":
			topics, err := db.Topics(showTag)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, strings.Join(topics, ", "))
			return nil

		case len(args) > 1:
			content, err := db.Content(args[1], cfg.IndentUnit)
			if err != nil {
				return err
			}
			fmt.Fprint(out, content)
			return nil
		}

		total, err := db.CountNodes("")
		if err != nil {
			return err
		}
		files, err := db.Files()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d nodes, %d files\n", total, len(files))
		for _, f := range files {
			fmt.Fprintln(out, f)
		}
		return nil
	},
}
