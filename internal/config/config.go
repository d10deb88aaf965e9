package config

import (
	"fmt"
	"strings"
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

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type CaptchaConfig struct {
	VerifyURL string
	Secret    string
	Timeout   time.Duration
}

type SecurityConfig struct {
	LockoutThreshold int
	LockoutWindow    time.Duration
	CodeTTL          time.Duration
	ResendCooldown   time.Duration
	SessionTTL       time.Duration
	RememberTTL      time.Duration
	SessionCookie    string
	RememberCookie   string
	CookieDomain     string
	CookieSecure     bool
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Captcha          CaptchaConfig
	Security         SecurityConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("STAYFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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

	// Captcha verification is skipped when no secret is configured, which
	// is only acceptable outside production.
	if cfg.Environment == "production" && cfg.Captcha.Secret == "" {
		return nil, fmt.Errorf("captcha.secret must be set in production")
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

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Secrets default empty so the env-var forms are picked up.
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("captcha.verifyurl", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("captcha.secret", "")
	v.SetDefault("captcha.timeout", "5s")

	v.SetDefault("security.lockoutthreshold", 5)
	v.SetDefault("security.lockoutwindow", "15m")
	v.SetDefault("security.codettl", "15m")
	v.SetDefault("security.resendcooldown", "60s")
	v.SetDefault("security.sessionttl", "24h")
	v.SetDefault("security.rememberttl", "720h") // 30 days
	v.SetDefault("security.sessioncookie", "sf_session")
	v.SetDefault("security.remembercookie", "sf_remember")
	v.SetDefault("security.cookiedomain", "")
	v.SetDefault("security.cookiesecure", true)
}
