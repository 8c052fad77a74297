package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	JWTSecret string
	// AdminSessionTTL applies to elevated roles, UserSessionTTL to
	// everyone else. Expiry is carried in the signed claim and checked
	// independently of the session store.
	AdminSessionTTL time.Duration
	UserSessionTTL  time.Duration
}

type SessionsConfig struct {
	// StaleAfter deactivates sessions whose last activity is older than
	// this even if the expiry claim has not passed yet.
	StaleAfter    time.Duration
	SweepInterval time.Duration
}

type TwoFactorConfig struct {
	Issuer          string
	BackupCodeCount int
	PendingTTL      time.Duration
	MaxAttempts     int
	AttemptWindow   time.Duration
}

type GeoConfig struct {
	Enabled  bool
	Endpoint string
	Timeout  time.Duration
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Security         SecurityConfig
	Sessions         SessionsConfig
	TwoFactor        TwoFactorConfig
	Geo              GeoConfig
	Archive          ArchiveConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SECURITYD")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.adminsessionttl", "30m")
	v.SetDefault("security.usersessionttl", "168h") // 7 days

	v.SetDefault("sessions.staleafter", "24h")
	v.SetDefault("sessions.sweepinterval", "5m")

	v.SetDefault("twofactor.issuer", "BeamX")
	v.SetDefault("twofactor.backupcodecount", 10)
	v.SetDefault("twofactor.pendingttl", "10m")
	v.SetDefault("twofactor.maxattempts", 5)
	v.SetDefault("twofactor.attemptwindow", "5m")

	v.SetDefault("geo.enabled", true)
	v.SetDefault("geo.endpoint", "http://ip-api.com/json")
	v.SetDefault("geo.timeout", "2s")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.bucket", "securityd-audit-archive")
	v.SetDefault("archive.usessl", false)
	v.SetDefault("archive.region", "us-east-1")
}
