package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgemut.dev/pkg/forgemut/internal/domain"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [run-folder]",
		Short: "View the report of a previous run",
		Long:  "View the report of a previous run. Without a folder the latest run under the logs directory is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewArgs := domain.ViewArgs{
				LogDir:   viper.GetString(logsDirKey),
				BaseName: viper.GetString(logsBaseNameKey),
			}
			if len(args) == 1 {
				viewArgs.Folder = m.Path(args[0])
			}

			return currentWorkflow(cmd).View(cmd.Context(), viewArgs)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
