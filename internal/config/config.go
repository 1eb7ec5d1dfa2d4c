package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"3000"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	DB    DBConfig    `envPrefix:"DB_"`
	Redis RedisConfig `envPrefix:"REDIS_"`
	Kafka KafkaConfig `envPrefix:"KAFKA_"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	LeaveTypes  []string       `env:"LEAVE_TYPES" envSeparator:"," envDefault:"Vacation,Sick Leave,Personal,Bereavement,Unpaid"`
	LeaveQuotas map[string]int `env:"LEAVE_QUOTAS" envSeparator:"," envKeyValSeparator:":" envDefault:"Vacation:20,Sick Leave:12,Personal:5,Bereavement:5"`

	StorageRetryMax uint64        `env:"STORAGE_RETRY_MAX" envDefault:"3"`
	StatsCacheTTL   time.Duration `env:"STATS_CACHE_TTL" envDefault:"60s"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"3s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"50"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

type DBConfig struct {
	Driver      string `env:"DRIVER" envDefault:"mysql"`
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        string `env:"PORT"`
	User        string `env:"USER" envDefault:"root"`
	Password    string `env:"PASSWORD"`
	Name        string `env:"NAME" envDefault:"college_leave_management"`
	SSLMode     string `env:"SSLMODE" envDefault:"disable"`
	MaxRetries  int    `env:"CONNECT_RETRIES" envDefault:"5"`
	MaxOpen     int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Addr string `env:"ADDR"`
}

type KafkaConfig struct {
	Broker string `env:"BROKER"`
	Group  string `env:"GROUP" envDefault:"go-leave-lifecycle"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MinJWTSecretLen is the shortest HMAC key accepted for signing actor tokens.
const MinJWTSecretLen = 32

func (c *Config) Validate() error {
	if len(strings.TrimSpace(c.JWTSecret)) < MinJWTSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLen)
	}
	switch c.DB.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or postgres, got %q", c.DB.Driver)
	}
	if c.DB.Port == "" {
		c.DB.Port = "3306"
		if c.DB.Driver == "postgres" {
			c.DB.Port = "5432"
		}
	}

	types := make([]string, 0, len(c.LeaveTypes))
	for _, lt := range c.LeaveTypes {
		if lt = strings.TrimSpace(lt); lt != "" {
			types = append(types, lt)
		}
	}
	if len(types) == 0 {
		return fmt.Errorf("LEAVE_TYPES must name at least one leave type")
	}
	c.LeaveTypes = types

	quotas := make(map[string]int, len(c.LeaveQuotas))
	for lt, days := range c.LeaveQuotas {
		lt = strings.TrimSpace(lt)
		if days < 0 {
			return fmt.Errorf("LEAVE_QUOTAS: negative quota for %q", lt)
		}
		quotas[lt] = days
	}
	c.LeaveQuotas = quotas
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
