package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wfunc/monopoly/game"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string        `mapstructure:"http_address"`
	RPCAddress     string        `mapstructure:"rpc_address"`
	MetricsAddress string        `mapstructure:"metrics_address"`
	Heartbeat      time.Duration `mapstructure:"heartbeat"`
	// IdleTimeout closes connections that send nothing for this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// GameConfig holds room defaults. MaxPlayers and StartingCash seed the
// settings of new rooms; the host can still change them in the lobby.
type GameConfig struct {
	MaxPlayers      int           `mapstructure:"max_players"`
	StartingCash    int           `mapstructure:"starting_cash"`
	GracePeriod     time.Duration `mapstructure:"grace_period"`
	TimerResolution time.Duration `mapstructure:"timer_resolution"`
	ChatHistory     int           `mapstructure:"chat_history"`
	ChatRate        float64       `mapstructure:"chat_rate"`
	ChatBurst       int           `mapstructure:"chat_burst"`
	ActionLogTail   int           `mapstructure:"action_log_tail"`
}

// Settings returns the default house rules for new rooms.
func (g GameConfig) Settings() game.Settings {
	s := game.DefaultSettings()
	if g.MaxPlayers > 0 {
		s.MaxPlayers = g.MaxPlayers
	}
	if g.StartingCash > 0 {
		s.StartingCash = g.StartingCash
	}
	return s
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.metrics_address", ":9090")
	v.SetDefault("server.heartbeat", 30*time.Second)
	v.SetDefault("server.idle_timeout", 90*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("game.max_players", game.MaxPlayersLimit)
	v.SetDefault("game.starting_cash", game.DefaultStartingCash)
	v.SetDefault("game.grace_period", 60*time.Second)
	v.SetDefault("game.timer_resolution", 100*time.Millisecond)
	v.SetDefault("game.chat_history", 100)
	v.SetDefault("game.chat_rate", 1.0)
	v.SetDefault("game.chat_burst", 5)
	v.SetDefault("game.action_log_tail", 50)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "monopoly")
}

// LoadConfig reads config.yaml from path. A missing file is not an error:
// defaults and MONOPOLY_* environment variables still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("monopoly")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Game.Settings().Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
