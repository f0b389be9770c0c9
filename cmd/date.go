package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dateCmd)
}

var dateCmd = &cobra.Command{
	Use:   "date [partial...]",
	Short: "Pad partial dates to full timestamps from the configured epoch",
	Long: `Each argument ("1984", "1984-03", ...) is completed with the tail of the
config's epoch. With no arguments the epoch itself is printed.`,
	Example: `  sitetree date 1984-03    # 1984-03-01T00:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{""}
		}
		for _, partial := range args {
			fmt.Fprintln(cmd.OutOrStdout(), cfg.NormalizeDate(partial))
		}
		return nil
	},
}
