package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string          `yaml:"git_commit" envconfig:"LBRY_GIT_COMMIT"`
	GitTag             string          `yaml:"git_tag" envconfig:"LBRY_GIT_TAG"`
	BuildTime          string          `yaml:"build_time" envconfig:"LBRY_BUILD_TIME"`
	IsProduction       bool            `yaml:"is_production" envconfig:"LBRY_IS_PRODUCTION"`
	LogLevel           zapcore.Level   `yaml:"log_level" envconfig:"LBRY_LOG_LEVEL"`
	LogFolder          string          `yaml:"log_folder" envconfig:"LBRY_LOG_FOLDER"`
	LogMaxSize         int             `yaml:"log_max_size" envconfig:"LBRY_LOG_MAX_SIZE"`
	ProfilerEnable     bool            `yaml:"profiler_enable" envconfig:"LBRY_PROFILER_ENABLE"`
	OpsEndpointsEnable bool            `yaml:"ops_endpoints_enable" envconfig:"LBRY_OPS_ENDPOINTS_ENABLE"`
	Server             ServerConfig    `yaml:"server"`
	Lecturers          LecturersConfig `yaml:"lecturers"`
	Library            LibraryConfig   `yaml:"library"`
	Postgres           PostgresConfig  `yaml:"postgres"`
	Journal            JournalConfig   `yaml:"journal"`
	Redis              RedisConfig     `yaml:"redis"`
	BoltDB             BoltDBConfig    `yaml:"boltdb"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"LBRY_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"LBRY_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"LBRY_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"LBRY_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"LBRY_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"LBRY_SERVER_SHUTDOWN_TIMEOUT"`
	RateLimit       float64       `yaml:"rate_limit" envconfig:"LBRY_SERVER_RATE_LIMIT"` // Requests per second allowed per source IP
	RateBurst       int           `yaml:"rate_burst" envconfig:"LBRY_SERVER_RATE_BURST"`
	RateIdleTTL     time.Duration `yaml:"rate_idle_ttl" envconfig:"LBRY_SERVER_RATE_IDLE_TTL"` // Idle time before a source IP limiter is dropped
	TrustProxy      bool          `yaml:"trust_proxy" envconfig:"LBRY_SERVER_TRUST_PROXY"`     // Key limiters on X-Real-IP / X-Forwarded-For
}

// LecturersConfig holds the settings of the lecturer registry server.
type LecturersConfig struct {
	Enable bool   `yaml:"enable" envconfig:"LBRY_LECTURERS_ENABLE"`
	Host   string `yaml:"host" envconfig:"LBRY_LECTURERS_HOST"`
	Port   string `yaml:"port" envconfig:"LBRY_LECTURERS_PORT"`
}

// LibraryConfig holds the library listing settings.
type LibraryConfig struct {
	DefaultLimit uint `yaml:"default_limit" envconfig:"LBRY_LIBRARY_DEFAULT_LIMIT"`
	MaxLimit     uint `yaml:"max_limit" envconfig:"LBRY_LIBRARY_MAX_LIMIT"`
}

type PostgresConfig struct {
	Driver          string        `yaml:"driver" envconfig:"LBRY_POSTGRES_DRIVER"` // `postgres` (lib/pq) or `pgx`
	DSN             string        `yaml:"dsn" envconfig:"LBRY_POSTGRES_DSN" json:"-"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"LBRY_POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"LBRY_POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"LBRY_POSTGRES_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" envconfig:"LBRY_POSTGRES_CONN_MAX_IDLE_TIME"`
	PingTimeout     time.Duration `yaml:"ping_timeout" envconfig:"LBRY_POSTGRES_PING_TIMEOUT"`
}

// JournalConfig enables the change journal made of redis queues and a boltdb store.
type JournalConfig struct {
	Enable       bool `yaml:"enable" envconfig:"LBRY_JOURNAL_ENABLE"`
	DefaultLimit int  `yaml:"default_limit" envconfig:"LBRY_JOURNAL_DEFAULT_LIMIT"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"LBRY_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"LBRY_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"LBRY_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"LBRY_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"LBRY_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"LBRY_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"LBRY_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"LBRY_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"LBRY_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"LBRY_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"LBRY_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"LBRY_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"LBRY_BOLTDB_BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if config.Lecturers.Enable && (len(config.Lecturers.Host) == 0 || len(config.Lecturers.Port) == 0) {
		return errors.New("make sure to set valid lecturers server address and port in configuration file")
	}

	if len(config.Postgres.DSN) == 0 {
		return errors.New("make sure to set a valid postgres dsn in configuration file")
	}

	switch config.Postgres.Driver {
	case "":
		config.Postgres.Driver = "postgres"
	case "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported postgres driver %q: use postgres or pgx", config.Postgres.Driver)
	}

	if config.Journal.Enable && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.Journal.Enable && len(config.BoltDB.BucketName) == 0 {
		config.BoltDB.BucketName = "journal"
	}

	if config.Journal.DefaultLimit <= 0 {
		config.Journal.DefaultLimit = 50
	}

	if config.Library.DefaultLimit == 0 {
		config.Library.DefaultLimit = 100
	}

	if config.Library.MaxLimit == 0 {
		config.Library.MaxLimit = 1000
	}

	if config.Server.RateIdleTTL <= 0 {
		config.Server.RateIdleTTL = 3 * time.Minute
	}

	if config.Postgres.PingTimeout == 0 {
		config.Postgres.PingTimeout = 5 * time.Second
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `LBRY`.
	err = LoadConfigEnvs("LBRY", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
