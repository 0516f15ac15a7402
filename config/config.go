package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultDataDirName      = ".rabbit"
	defaultIndexPath        = "index"
	defaultKVDBPath         = "meta.db"
	defaultLogDir           = "logs"
	defaultLogLevel         = "info"
	defaultWorkers          = 8
	defaultSearchLimit      = 100
	defaultConverterCommand = "pandoc"
	defaultConverterTimeout = 2 * time.Minute
	defaultPort             = "8080"
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	viperConfig.SetDefault("database.index_path", defaultIndexPath)
	viperConfig.SetDefault("database.kvdb_path", defaultKVDBPath)
	viperConfig.SetDefault("logging.dir", defaultLogDir)
	viperConfig.SetDefault("logging.level", defaultLogLevel)
	viperConfig.SetDefault("index.workers", defaultWorkers)
	viperConfig.SetDefault("index.commit_interval", 0)
	viperConfig.SetDefault("search.limit", defaultSearchLimit)
	viperConfig.SetDefault("converter.command", defaultConverterCommand)
	viperConfig.SetDefault("converter.timeout", defaultConverterTimeout)
	viperConfig.SetDefault("server.port", defaultPort)

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

// GetDataPath is the per-user directory holding the index, the key-value
// database and the logs.
func (c *Config) GetDataPath() string {
	dataPath := c.config.GetString("DATA_PATH")
	if len(dataPath) == 0 {
		dataPath = c.config.GetString("storage.data_path")
	}
	if len(dataPath) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), defaultDataDirName)
		}
		dataPath = filepath.Join(home, defaultDataDirName)
	}

	return dataPath
}

func (c *Config) GetIndexPath() string {
	indexPath := c.config.GetString("INDEX_PATH")
	if len(indexPath) == 0 {
		indexPath = c.config.GetString("database.index_path")
	}

	return c.underDataPath(indexPath)
}

func (c *Config) GetKVDBPath() string {
	kvdbPath := c.config.GetString("KVDB_PATH")
	if len(kvdbPath) == 0 {
		kvdbPath = c.config.GetString("database.kvdb_path")
	}

	return c.underDataPath(kvdbPath)
}

func (c *Config) GetLogDir() string {
	logDir := c.config.GetString("LOG_DIR")
	if len(logDir) == 0 {
		logDir = c.config.GetString("logging.dir")
	}

	return c.underDataPath(logDir)
}

func (c *Config) GetLogLevel() string {
	level := c.config.GetString("LOG_LEVEL")
	if len(level) == 0 {
		level = c.config.GetString("logging.level")
	}

	return level
}

func (c *Config) GetWorkers() int {
	workers := c.config.GetInt("WORKERS")
	if workers <= 0 {
		workers = c.config.GetInt("index.workers")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	return workers
}

// GetCommitInterval is the number of staged documents after which an interim
// commit is issued. Zero means a single commit at the end of a run.
func (c *Config) GetCommitInterval() int {
	interval := c.config.GetInt("COMMIT_INTERVAL")
	if interval <= 0 {
		interval = c.config.GetInt("index.commit_interval")
	}

	return max(0, interval)
}

func (c *Config) GetExcludePatterns() []string {
	patterns := c.config.GetStringSlice("EXCLUDE")
	if len(patterns) == 0 {
		patterns = c.config.GetStringSlice("index.exclude")
	}

	return patterns
}

func (c *Config) GetSearchLimit() int {
	limit := c.config.GetInt("SEARCH_LIMIT")
	if limit <= 0 {
		limit = c.config.GetInt("search.limit")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	return limit
}

func (c *Config) GetConverterCommand() string {
	command := c.config.GetString("CONVERTER_COMMAND")
	if len(command) == 0 {
		command = c.config.GetString("converter.command")
	}

	return command
}

func (c *Config) GetConverterTimeout() time.Duration {
	timeout := c.config.GetDuration("CONVERTER_TIMEOUT")
	if timeout <= 0 {
		timeout = c.config.GetDuration("converter.timeout")
	}
	if timeout <= 0 {
		timeout = defaultConverterTimeout
	}

	return timeout
}

func (c *Config) underDataPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.GetDataPath(), path)
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
