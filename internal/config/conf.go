// Package config holds the command line options and the TOML demo settings.
package config

// Conf is the set of global command line options. Every option can also be
// given through its QALGOS_ environment variable.
type Conf struct {
	DevMode            bool   `long:"dev-mode" description:"log in human readable console format" env:"QALGOS_DEV_MODE"`
	LogLevel           string `long:"log-level" description:"log level" default:"warn" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QALGOS_LOG_LEVEL"`
	DisableStderrLog   bool   `long:"disable-stderr-log" description:"do not log to standard error" env:"QALGOS_DISABLE_STDERR_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QALGOS_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./logs" env:"QALGOS_LOG_DIR"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QALGOS_LOG_ROTATION_MAX_DAYS"`
	SettingPath        string `long:"setting-path" description:"demo setting file path" default:"./qalgos.toml" env:"QALGOS_SETTING_PATH"`
	Seed               uint64 `long:"seed" description:"simulator seed, overrides the setting file when non-zero" env:"QALGOS_SEED"`
}
