package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "PANDEMIC"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Identity IdentityConfig `yaml:"identity" mapstructure:"identity"`
	WS       WSConfig       `yaml:"ws" mapstructure:"ws"`
	Game     GameConfig     `yaml:"game" mapstructure:"game"`
}

type HTTPConfig struct {
	Host          string `yaml:"host" mapstructure:"host"`
	Port          int    `yaml:"port" mapstructure:"port"`
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"` // used in QR join links; request host when empty
	ShutdownS     int    `yaml:"shutdown_s" mapstructure:"shutdown_s"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownS) * time.Second
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

type StoreConfig struct {
	Driver     string      `yaml:"driver" mapstructure:"driver"` // memory, sqlite or mongo
	SQLitePath string      `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Mongo      MongoConfig `yaml:"mongo" mapstructure:"mongo"`
	CASRetries int         `yaml:"cas_retries" mapstructure:"cas_retries"`
	OpTimeoutS int         `yaml:"op_timeout_s" mapstructure:"op_timeout_s"`
}

func (c StoreConfig) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutS) * time.Second
}

type MongoConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

func (c MongoConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutS) * time.Second
}

type IdentityConfig struct {
	Secret   string `yaml:"secret" mapstructure:"secret"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

func (c IdentityConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

type WSConfig struct {
	MessagesPerSecond float64 `yaml:"messages_per_second" mapstructure:"messages_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

type GameConfig struct {
	Difficulty       string `yaml:"difficulty" mapstructure:"difficulty"`
	TurnTimerSeconds int    `yaml:"turn_timer_seconds" mapstructure:"turn_timer_seconds"`
	MaxPlayers       int    `yaml:"max_players" mapstructure:"max_players"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.public_base_url", "")
	v.SetDefault("http.shutdown_s", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_dir", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.dev", false)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite_path", "pandemic.db")
	v.SetDefault("store.mongo.uri", "")
	v.SetDefault("store.mongo.database", "pandemic")
	v.SetDefault("store.mongo.connect_timeout_s", 3)
	v.SetDefault("store.cas_retries", 5)
	v.SetDefault("store.op_timeout_s", 5)

	v.SetDefault("identity.secret", "")
	v.SetDefault("identity.ttl_hours", 24)

	v.SetDefault("ws.messages_per_second", 10)
	v.SetDefault("ws.burst", 20)

	v.SetDefault("game.difficulty", "easy")
	v.SetDefault("game.turn_timer_seconds", 60)
	v.SetDefault("game.max_players", 10)
}

// Load reads configuration from path (optional) and PANDEMIC_* environment
// variables. When path names a file it is watched, and onChange receives
// every successfully reloaded configuration.
func Load(path string, onChange func(Config)) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var conf Config
	if path != "" {
		if !fileExist(path) {
			return conf, fmt.Errorf("config file not exist, configPath=%v", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return conf, fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.Unmarshal(&conf); err != nil {
		return conf, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return conf, err
	}

	if path != "" && onChange != nil {
		v.OnConfigChange(func(e fsnotify.Event) {
			var next Config
			if err := v.Unmarshal(&next); err != nil {
				return
			}
			if next.Validate() != nil {
				return
			}
			onChange(next)
		})
		v.WatchConfig()
	}
	return conf, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "mongo":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "mongo" && c.Store.Mongo.URI == "" {
		return errors.New("store.mongo.uri is required for the mongo driver")
	}
	if c.HTTP.Port <= 0 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.Store.CASRetries < 1 {
		return errors.New("store.cas_retries must be at least 1")
	}
	return nil
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
