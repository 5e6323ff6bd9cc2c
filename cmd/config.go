package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"mockshift.dev/pkg/mockshift/internal/domain"
	"mockshift.dev/pkg/mockshift/internal/domain/passes"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "mockshift"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName       = "output"
	excludeFlagName      = "exclude"
	verboseFlagName      = "verbose"
	runParallelFlagName  = "parallel"
	runDryFlagName       = "dry"
	runRenameFlagName    = "rename"
	strictImportFlagName = "strict-import"
	metricsFileFlagName  = "metrics-file"

	runParallelConfigKey  = "run.parallel"
	runDryConfigKey       = "run.dry"
	runRenameConfigKey    = "run.rename"
	strictImportConfigKey = "run.strict_import"
	metricsFileConfigKey  = "run.metrics_file"
	excludeConfigKey      = "paths.exclude"

	sourceModuleConfigKey   = "source.module"
	sandboxFactoryConfigKey = "sandbox.factory"
	sandboxModuleConfigKey  = "sandbox.module"
	exactThriceConfigKey    = "assertions.exact_thrice"

	defaultReportsDir  = ".mockshift-reports"
	defaultRunParallel = 1

	envPrefix = "MOCKSHIFT"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".mockshift.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
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

	defaults := passes.DefaultOptions()

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runDryConfigKey, false)
	viper.SetDefault(runRenameConfigKey, false)
	viper.SetDefault(strictImportConfigKey, false)
	viper.SetDefault(metricsFileConfigKey, "")
	viper.SetDefault(excludeConfigKey, []string{})

	viper.SetDefault(sourceModuleConfigKey, domain.DefaultSourceModule)
	viper.SetDefault(sandboxFactoryConfigKey, defaults.SandboxFactory)
	viper.SetDefault(sandboxModuleConfigKey, defaults.SandboxModule)
	viper.SetDefault(exactThriceConfigKey, defaults.ExactThrice)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		slog.Warn("Failed to read config file", "path", viper.ConfigFileUsed(), "error", err)
	}
}

// pipelineOptions reads the rewrite settings from the current configuration.
func pipelineOptions() domain.PipelineOptions {
	return domain.PipelineOptions{
		SourceModule: viper.GetString(sourceModuleConfigKey),
		StrictImport: viper.GetBool(strictImportConfigKey),
		Passes: passes.Options{
			SandboxFactory: viper.GetString(sandboxFactoryConfigKey),
			SandboxModule:  viper.GetString(sandboxModuleConfigKey),
			ExactThrice:    viper.GetBool(exactThriceConfigKey),
		},
	}
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

	// Numeric slog levels are accepted too (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at a rotating log file.
//
// It logs at the configured level, or at Debug when verbose is true.
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
