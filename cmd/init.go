package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write forgemut.yaml with the current settings",
		Long: `Write forgemut.yaml in the current directory with the corpus, runner and log
settings currently in effect, so they can be edited instead of passed as flags.
An existing file is kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targetPath := filepath.Join(configFolderPath, configFileName)

			write := viper.SafeWriteConfigAs
			if force {
				write = viper.WriteConfigAs
			}

			if err := write(targetPath); err != nil {
				return fmt.Errorf("write %s: %w", targetPath, err)
			}

			cmd.Printf("Wrote %s\n", targetPath)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
