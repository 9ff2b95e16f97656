package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	"forgemut.dev/pkg/forgemut/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "forgemut"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	matchContractFlagName   = "match-contract"
	noMatchContractFlagName = "no-match-contract"
	matchTestFlagName       = "match-test"
	noMatchTestFlagName     = "no-match-test"
	matchMutantFlagName     = "match-mutant"
	verboseFlagName         = "verbose"
	debugFlagName           = "debug"
	sourceRootFlagName      = "source-root"
	corpusDirFlagName       = "corpus"
	skipLogFlagName         = "skip-log"
	logsDirFlagName         = "logs-dir"

	corpusDirKey      = "corpus.dir"
	skipLogKey        = "corpus.skip_log"
	corpusParallelKey = "corpus.parallel"
	sourceRootKey     = "source.root"
	backupDirKey      = "backup.dir"
	logsDirKey        = "logs.dir"
	logsBaseNameKey   = "logs.base_name"
	logsMaxSizeKey    = "logs.max_size"
	runnerBinaryKey   = "runner.binary"
	runnerMarkerKey   = "runner.no_match_marker"

	matchContractKey   = "run.match_contract"
	noMatchContractKey = "run.no_match_contract"
	matchTestKey       = "run.match_test"
	noMatchTestKey     = "run.no_match_test"
	matchMutantKey     = "run.match_mutant"
	runVerboseKey      = "run.verbose"
	runDebugKey        = "run.debug"

	defaultCorpusDir    = "gambit_out/mutants"
	defaultSkipLog      = "gambit_out/mutants.log"
	defaultSourceRoot   = "."
	defaultLogsDir      = "testLogs"
	defaultLogsBaseName = "mutationsTestLog"

	envPrefix = "FORGEMUT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".forgemut.log"
	defaultLogLevel      = "info"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(corpusDirKey, defaultCorpusDir)
	viper.SetDefault(skipLogKey, defaultSkipLog)
	viper.SetDefault(corpusParallelKey, domain.DefaultResolveThreads)
	viper.SetDefault(sourceRootKey, defaultSourceRoot)
	viper.SetDefault(backupDirKey, domain.DefaultBackupDir)
	viper.SetDefault(logsDirKey, defaultLogsDir)
	viper.SetDefault(logsBaseNameKey, defaultLogsBaseName)
	viper.SetDefault(logsMaxSizeKey, adapter.DefaultMaxLogSize)
	viper.SetDefault(runnerBinaryKey, adapter.DefaultRunnerBinary)
	viper.SetDefault(runnerMarkerKey, domain.DefaultNoMatchMarker)

	viper.SetDefault(matchContractKey, "")
	viper.SetDefault(noMatchContractKey, "")
	viper.SetDefault(matchTestKey, "")
	viper.SetDefault(noMatchTestKey, "")
	viper.SetDefault(matchMutantKey, "")
	viper.SetDefault(runVerboseKey, false)
	viper.SetDefault(runDebugKey, false)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	readConfig()
}

// readConfig loads forgemut.yaml when present. A missing file is the normal
// case and stays silent.
func readConfig() {
	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return
	}

	slog.Warn("Failed to read config file", "file", configFileName, "error", err)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at the configured level; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
