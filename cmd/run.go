package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	"forgemut.dev/pkg/forgemut/internal/domain"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Test the mutant corpus",
		Long:  runLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return currentWorkflow(cmd).Run(cmd.Context(), domain.RunArgs{
				Options: runnerOptions(),
				Pattern: viper.GetString(matchMutantKey),
				SkipLog: m.Path(viper.GetString(skipLogKey)),
				Binary:  viper.GetString(runnerBinaryKey),
				Log: adapter.LogConfig{
					Dir:      viper.GetString(logsDirKey),
					BaseName: viper.GetString(logsBaseNameKey),
					MaxSize:  viper.GetInt64(logsMaxSizeKey),
					Verbose:  viper.GetBool(runVerboseKey),
					Debug:    viper.GetBool(runDebugKey),
				},
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().String(matchContractFlagName, viper.GetString(matchContractKey), "only run tests in contracts matching the regex")
	bindFlagToConfig(cmd.Flags().Lookup(matchContractFlagName), matchContractKey)

	cmd.Flags().String(noMatchContractFlagName, viper.GetString(noMatchContractKey), "skip tests in contracts matching the regex")
	bindFlagToConfig(cmd.Flags().Lookup(noMatchContractFlagName), noMatchContractKey)

	cmd.Flags().String(matchTestFlagName, viper.GetString(matchTestKey), "only run test functions matching the regex")
	bindFlagToConfig(cmd.Flags().Lookup(matchTestFlagName), matchTestKey)

	cmd.Flags().String(noMatchTestFlagName, viper.GetString(noMatchTestKey), "skip test functions matching the regex")
	bindFlagToConfig(cmd.Flags().Lookup(noMatchTestFlagName), noMatchTestKey)

	cmd.Flags().StringP(matchMutantFlagName, "m", viper.GetString(matchMutantKey), "only test mutants of files whose base name matches the regex")
	bindFlagToConfig(cmd.Flags().Lookup(matchMutantFlagName), matchMutantKey)

	cmd.Flags().BoolP(verboseFlagName, "v", viper.GetBool(runVerboseKey), "echo every log message to the console")
	bindFlagToConfig(cmd.Flags().Lookup(verboseFlagName), runVerboseKey)

	cmd.Flags().BoolP(debugFlagName, "d", viper.GetBool(runDebugKey), "write every message to the run log, including runner output")
	bindFlagToConfig(cmd.Flags().Lookup(debugFlagName), runDebugKey)
}

func runnerOptions() m.RunnerOptions {
	return m.RunnerOptions{
		MatchContract:   viper.GetString(matchContractKey),
		NoMatchContract: viper.GetString(noMatchContractKey),
		MatchTest:       viper.GetString(matchTestKey),
		NoMatchTest:     viper.GetString(noMatchTestKey),
	}
}
