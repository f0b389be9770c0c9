package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/agentic-research/sitetree/internal/outline"
	"github.com/agentic-research/sitetree/internal/topic"
)

var (
	topicsOutput string
	topicsJSON   bool
	topicsList   bool
)

func init() {
	topicsCmd.Flags().StringVarP(&topicsOutput, "output", "o", "", "Write to file instead of stdout")
	topicsCmd.Flags().BoolVar(&topicsJSON, "json", false, "Print the closure as a JSON object")
	topicsCmd.Flags().BoolVar(&topicsList, "list-topics", false, "Print every topic some tag implies, one per line")
	rootCmd.AddCommand(topicsCmd)
}

var topicsCmd = &cobra.Command{
	Use:   "topics [hierarchy] [tags...]",
	Short: "Print a topic closure, or propagate it onto a tag list",
	Long: `With only a hierarchy outline, prints every tag with the topics it implies.
With tags, prints the propagated tag list: implied topics first, then the
given tags. Redundant topic tags are reported as warnings.
The hierarchy defaults to the config's hierarchy file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Hierarchy
		if len(args) > 0 {
			path, args = args[0], args[1:]
		}
		if path == "" {
			return fmt.Errorf("no hierarchy file given and none configured")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read hierarchy: %w", err)
		}
		h, err := outline.NewCodec(cfg).Parse(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		closure := topic.Build(h)

		if len(args) > 0 {
			for _, tag := range args {
				if !closure.Has(tag) {
					logger.Debug("tag not in hierarchy", slog.String("tag", tag))
				}
			}
			tags := append([]string(nil), args...)
			topic.NewPropagator(closure, logger).Apply(&tags)
			return emit(cmd, topicsOutput, strings.Join(tags, " ")+"\n")
		}

		if topicsList {
			var b strings.Builder
			for _, t := range closure.AllTopics() {
				b.WriteString(t)
				b.WriteByte('\n')
			}
			return emit(cmd, topicsOutput, b.String())
		}

		if topicsJSON {
			m := make(map[string]any, closure.Len())
			for _, tag := range closure.Tags() {
				topics := []any{}
				for _, t := range closure.Topics(tag) {
					topics = append(topics, t)
				}
				m[tag] = topics
			}
			return emit(cmd, topicsOutput, oj.JSON(m, &oj.Options{Indent: 2, Sort: true})+"\n")
		}

		var b strings.Builder
		for _, tag := range closure.Tags() {
			fmt.Fprintf(&b, "%s: %s\n", tag, strings.Join(closure.Topics(tag), ", "))
		}
		return emit(cmd, topicsOutput, b.String())
	},
}
