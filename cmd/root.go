// Package cmd provides the root command and CLI setup for forgemut.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	"forgemut.dev/pkg/forgemut/internal/controller"
	"forgemut.dev/pkg/forgemut/internal/domain"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var logStore adapter.LogStore
var reportStore adapter.ReportStore
var worktreeAdapter adapter.WorktreeAdapter

// workflow overrides the configured workflow when set.
var workflow domain.Workflow

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	logStore = adapter.NewLocalLogStore()
	reportStore = adapter.NewLocalReportStore()
	worktreeAdapter = adapter.NewLocalWorktreeAdapter()
}

const corpusLayoutHelp = `Expects a gambit corpus laid out as:
  gambit_out/mutants/<id>/<path of the mutated file>
  gambit_out/mutants.log   mutants to skip (optional)`

const rootLongDescription = `Forgemut drives mutation testing for Foundry projects. Every mutant of a
pre-generated corpus is swapped into the project in turn, the forge test
suite is run against it, and mutants the suite fails to detect are reported.

` + corpusLayoutHelp

const runLongDescription = `Test every mutant of the corpus against the project's test suite.

Runner patterns are forwarded to forge test. The original sources are
restored when the run ends, including after an interrupt.

` + corpusLayoutHelp

const listLongDescription = `List the mutants of the corpus, their target files and whether a run
would test or skip them.

` + corpusLayoutHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgemut",
		Short: "Foundry mutation testing driver",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(runVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(sourceRootFlagName, viper.GetString(sourceRootKey), "root of the project under test")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(sourceRootFlagName), sourceRootKey)

	cmd.PersistentFlags().String(corpusDirFlagName, viper.GetString(corpusDirKey), "directory holding one folder per mutant")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(corpusDirFlagName), corpusDirKey)

	cmd.PersistentFlags().String(skipLogFlagName, viper.GetString(skipLogKey), "file listing mutants to skip")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(skipLogFlagName), skipLogKey)

	cmd.PersistentFlags().String(logsDirFlagName, viper.GetString(logsDirKey), "directory receiving one folder per run")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logsDirFlagName), logsDirKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// currentWorkflow wires the workflow from the current configuration.
func currentWorkflow(cmd *cobra.Command) domain.Workflow {
	if workflow != nil {
		return workflow
	}

	sourceRoot := m.Path(viper.GetString(sourceRootKey))
	resolver := domain.NewCorpusResolver(fsAdapter, domain.CorpusConfig{
		Dir:        m.Path(viper.GetString(corpusDirKey)),
		SourceRoot: sourceRoot,
		Threads:    viper.GetInt(corpusParallelKey),
	})
	testAdapter := adapter.NewLocalTestRunnerAdapter(viper.GetString(runnerBinaryKey))

	return domain.NewWorkflow(domain.WorkflowDeps{
		FS:       fsAdapter,
		Logs:     logStore,
		Reports:  reportStore,
		Worktree: worktreeAdapter,
		Resolver: resolver,
		Filter:   domain.NewSkipFilter(fsAdapter, resolver),
		Swapper: domain.NewFileSwapper(fsAdapter, domain.SwapConfig{
			SourceRoot: sourceRoot,
			BackupDir:  m.Path(viper.GetString(backupDirKey)),
		}),
		Orchestrator: domain.NewOrchestrator(testAdapter, sourceRoot, viper.GetString(runnerMarkerKey)),
		UI:           controller.NewUI(cmd),
	}, sourceRoot)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
