// config/config.go - Application configuration (viper + .env)
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Path is the optional location of a YAML config file.
type Path string

type ServerConfig struct {
	Port           string        `mapstructure:"port" validate:"required"`
	CORSOrigins    string        `mapstructure:"corsOrigins" validate:"required"`
	Environment    string        `mapstructure:"environment" validate:"required|in:development,production,test"`
	BodyLimitMB    int           `mapstructure:"bodyLimitMB" validate:"required|min:1"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"required|in:postgres,sqlite"`
	DSN      string `mapstructure:"dsn" validate:"required"`
	MaxIdle  int    `mapstructure:"maxIdle" validate:"min:1"`
	MaxOpen  int    `mapstructure:"maxOpen" validate:"min:1"`
	LogLevel string `mapstructure:"logLevel" validate:"required|in:silent,error,warn,info"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwtSecret" validate:"required|minLen:32"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Pretty bool   `mapstructure:"pretty"`
}

type ClockConfig struct {
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// ProgressionConfig holds the thresholds of the streak/challenge engine.
type ProgressionConfig struct {
	HeartbeatCredit     int `mapstructure:"heartbeatCredit" validate:"min:0"`
	HeartbeatMaxCredit  int `mapstructure:"heartbeatMaxCredit" validate:"min:1"`
	StreakThreshold     int `mapstructure:"streakThreshold" validate:"min:1"`
	StreakGraceDays     int `mapstructure:"streakGraceDays" validate:"min:0"`
	GrammarDailyGoal    int `mapstructure:"grammarDailyGoal" validate:"min:1"`
	VocabularyDailyGoal int `mapstructure:"vocabularyDailyGoal" validate:"min:1"`
	TimeGoalHours       int `mapstructure:"timeGoalHours" validate:"min:1"`
	GeneralQuizSize     int `mapstructure:"generalQuizSize" validate:"min:1"`
}

type AchievementsConfig struct {
	TemplateUserID uint `mapstructure:"templateUserId"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	SizeMB  int  `mapstructure:"sizeMB"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type SweepConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	MaxRequests       int  `mapstructure:"maxRequests" validate:"min:1"`
	WindowSeconds     int  `mapstructure:"windowSeconds" validate:"min:1"`
	AuthMaxRequests   int  `mapstructure:"authMaxRequests" validate:"min:1"`
	AuthWindowSeconds int  `mapstructure:"authWindowSeconds" validate:"min:1"`
	HeartbeatMax      int  `mapstructure:"heartbeatMax" validate:"min:1"`
	HeartbeatWindow   int  `mapstructure:"heartbeatWindowSeconds" validate:"min:1"`
}

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Clock        ClockConfig        `mapstructure:"clock"`
	Progression  ProgressionConfig  `mapstructure:"progression"`
	Achievements AchievementsConfig `mapstructure:"achievements"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Sweep        SweepConfig        `mapstructure:"sweep"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
}

// IsProduction reports whether internal error messages should be hidden.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.corsOrigins", "http://localhost:3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.bodyLimitMB", 4)
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.requestTimeout", 5*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost port=5432 user=postgres dbname=hangeul sslmode=disable")
	v.SetDefault("database.maxIdle", 10)
	v.SetDefault("database.maxOpen", 100)
	v.SetDefault("database.logLevel", "warn")

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.tokenTTL", 720*time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty", false)

	v.SetDefault("clock.timezone", "UTC")

	v.SetDefault("progression.heartbeatCredit", 30)
	v.SetDefault("progression.heartbeatMaxCredit", 120)
	v.SetDefault("progression.streakThreshold", 3600)
	v.SetDefault("progression.streakGraceDays", 3)
	v.SetDefault("progression.grammarDailyGoal", 3)
	v.SetDefault("progression.vocabularyDailyGoal", 20)
	v.SetDefault("progression.timeGoalHours", 2)
	v.SetDefault("progression.generalQuizSize", 100)

	v.SetDefault("achievements.templateUserId", 0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.sizeMB", 8)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("sweep.enabled", false)
	v.SetDefault("sweep.cron", "5 0 * * *")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.maxRequests", 100)
	v.SetDefault("ratelimit.windowSeconds", 900)
	v.SetDefault("ratelimit.authMaxRequests", 5)
	v.SetDefault("ratelimit.authWindowSeconds", 300)
	v.SetDefault("ratelimit.heartbeatMax", 10)
	v.SetDefault("ratelimit.heartbeatWindowSeconds", 60)
}

// Load reads .env (if present), the optional YAML file and HANGEUL_* environment
// variables, then validates the result.
func Load(path Path) (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HANGEUL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names kept from the single-binary deployment.
	_ = v.BindEnv("database.dsn", "HANGEUL_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("auth.jwtSecret", "HANGEUL_AUTH_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("server.port", "HANGEUL_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.corsOrigins", "HANGEUL_SERVER_CORSORIGINS", "CORS_ORIGINS")
	_ = v.BindEnv("server.environment", "HANGEUL_SERVER_ENVIRONMENT", "APP_ENV")

	if path != "" {
		v.SetConfigFile(string(path))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config (path: %s): %w", path, err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

// Validate runs the struct rules of every section.
func (c *Config) Validate() error {
	sections := []interface{}{
		&c.Server, &c.Database, &c.Auth, &c.Logger, &c.Clock, &c.Progression, &c.RateLimit,
	}

	var errs []error
	for _, section := range sections {
		v := validate.Struct(section)
		if !v.Validate() {
			errs = append(errs, errors.New(v.Errors.String()))
		}
	}

	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("clock.timezone: %w", err))
	}
	if c.Progression.HeartbeatCredit > c.Progression.HeartbeatMaxCredit {
		errs = append(errs, errors.New("progression.heartbeatCredit must not exceed heartbeatMaxCredit"))
	}
	if c.Cache.Enabled && c.Cache.SizeMB <= 0 {
		errs = append(errs, errors.New("cache.sizeMB must be positive when the cache is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
