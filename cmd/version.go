package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the forgemut build, the commit it was built from and the configuration schema it reads.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("config schema\t %d\n", currentConfigVersion)

			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("forgemut\t unknown")
				return
			}

			cmd.Println("forgemut\t", info.Main.Version)
			cmd.Println("go\t\t", info.GoVersion)

			if revision := buildSetting(info, "vcs.revision"); revision != "" {
				cmd.Println("commit\t\t", revision)
			}
		},
	}
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}

	return ""
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
