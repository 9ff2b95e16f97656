package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgemut.dev/pkg/forgemut/internal/domain"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [mutant-pattern]",
		Short: "List the mutant corpus",
		Long:  listLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := viper.GetString(matchMutantKey)
			if len(args) == 1 {
				pattern = args[0]
			}

			return currentWorkflow(cmd).List(cmd.Context(), domain.ListArgs{
				Pattern: pattern,
				SkipLog: m.Path(viper.GetString(skipLogKey)),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
