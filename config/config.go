package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game   GameConfig   `mapstructure:"game"`
	Search SearchConfig `mapstructure:"search"`
	Server ServerConfig `mapstructure:"server"`
	Arena  ArenaConfig  `mapstructure:"arena"`
}

// GameConfig holds live game settings
type GameConfig struct {
	AIPlayer   int           `mapstructure:"ai_player"` // 0 for two humans
	Difficulty string        `mapstructure:"difficulty"`
	AIDelay    time.Duration `mapstructure:"ai_delay"`
	SkipDelay  time.Duration `mapstructure:"skip_delay"`
	ReadyDelay time.Duration `mapstructure:"ready_delay"`
	AgentURL   string        `mapstructure:"agent_url"` // empty for the local agent
}

// SearchConfig holds MCTS settings for the medium agent
type SearchConfig struct {
	Iterations  int     `mapstructure:"iterations"`
	Cutoff      int     `mapstructure:"cutoff"`
	Goroutines  int     `mapstructure:"goroutines"`
	Exploration float64 `mapstructure:"exploration"`
}

// ServerConfig holds presentation bridge settings
type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ArenaConfig holds AI-vs-AI experiment settings
type ArenaConfig struct {
	Games     int    `mapstructure:"games"`
	MaxTurns  int    `mapstructure:"max_turns"`
	OutputDir string `mapstructure:"output_dir"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("game.ai_player", 2)
	v.SetDefault("game.difficulty", "easy")
	v.SetDefault("game.ai_delay", 500*time.Millisecond)
	v.SetDefault("game.skip_delay", 1100*time.Millisecond)
	v.SetDefault("game.ready_delay", 1400*time.Millisecond)
	v.SetDefault("game.agent_url", "")

	v.SetDefault("search.iterations", 160)
	v.SetDefault("search.cutoff", 40)
	v.SetDefault("search.goroutines", 1)
	v.SetDefault("search.exploration", 1.4)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "console")

	v.SetDefault("arena.games", 20)
	v.SetDefault("arena.max_turns", 300)
	v.SetDefault("arena.output_dir", "experiments/results")
}

// Init loads defaults, an optional config file and KOTW_* environment
// overrides. A missing file is not an error.
func Init(configPath string) error {
	v = viper.New()
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("KOTW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(loaded); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = loaded
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// WatchConfig reloads the config file on change. Invalid edits are reported
// and the previous config is kept.
func WatchConfig(onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded := &Config{}
		err := v.Unmarshal(reloaded)
		if err == nil {
			err = Validate(reloaded)
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("cannot reload %s: %w", e.Name, err))
			}
			return
		}
		cfg = reloaded
		if onChange != nil {
			onChange(reloaded)
		}
	})
	v.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.AIPlayer < 0 || c.Game.AIPlayer > 2 {
		return fmt.Errorf("game.ai_player must be 0, 1 or 2")
	}
	if c.Game.AIDelay < 0 || c.Game.SkipDelay < 0 || c.Game.ReadyDelay < 0 {
		return fmt.Errorf("game delays must be non-negative")
	}
	if c.Game.AgentURL != "" {
		if u, err := url.Parse(c.Game.AgentURL); err != nil || u.Host == "" {
			return fmt.Errorf("game.agent_url must be an absolute URL")
		}
	}

	if c.Search.Iterations <= 0 {
		return fmt.Errorf("search.iterations must be positive")
	}
	if c.Search.Cutoff <= 0 {
		return fmt.Errorf("search.cutoff must be positive")
	}
	if c.Search.Goroutines <= 0 {
		return fmt.Errorf("search.goroutines must be positive")
	}
	if c.Search.Exploration <= 0 {
		return fmt.Errorf("search.exploration must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.LogFormat != "console" && c.Server.LogFormat != "json" {
		return fmt.Errorf("server.log_format must be console or json")
	}

	if c.Arena.Games <= 0 {
		return fmt.Errorf("arena.games must be positive")
	}
	if c.Arena.MaxTurns <= 0 {
		return fmt.Errorf("arena.max_turns must be positive")
	}
	return nil
}
