package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	Signatures SignaturesConfig `mapstructure:"signatures"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	SignatureGC string `mapstructure:"signature_gc"`
}

// SignaturesConfig is the signature engine's configuration surface. An
// expiration value of 0 hours disables that expiration type.
type SignaturesConfig struct {
	WormholeExpirationHours int  `mapstructure:"wormhole_expiration_hours"`
	DefaultExpirationHours  int  `mapstructure:"default_expiration_hours"`
	PreserveConnected       bool `mapstructure:"preserve_connected"`

	// GCMaxAgeHours is the periodic batch safety net, independent of the
	// per-type on-demand values above.
	GCMaxAgeHours int `mapstructure:"gc_max_age_hours"`

	PendingDelay time.Duration `mapstructure:"pending_delay"`
	LazyDelete   bool          `mapstructure:"lazy_delete"`

	// SuppressUntouchedBroadcast skips the change notification when a paste
	// produced only no-op re-asserts.
	SuppressUntouchedBroadcast bool `mapstructure:"suppress_untouched_broadcast"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.signature_gc", "@every 1h")
	v.SetDefault("signatures.wormhole_expiration_hours", 24)
	v.SetDefault("signatures.default_expiration_hours", 72)
	v.SetDefault("signatures.preserve_connected", true)
	v.SetDefault("signatures.gc_max_age_hours", 720)
	v.SetDefault("signatures.pending_delay", "30s")
	v.SetDefault("signatures.lazy_delete", true)
	v.SetDefault("signatures.suppress_untouched_broadcast", true)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
