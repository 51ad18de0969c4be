package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string   `yaml:"env" env:"ENV" env-default:"local"`
	Postgres Postgres `yaml:"postgres"`
	Server   Server   `yaml:"server"`
	Slack    Slack    `yaml:"slack"`
	Linear   Linear   `yaml:"linear"`
	GitHub   GitHub   `yaml:"github"`
	Schedule Schedule `yaml:"schedule"`
}

type Postgres struct {
	Username        string        `env:"POSTGRES_USER" env-required:"true"`
	Password        string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Host            string        `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	Database        string        `env:"POSTGRES_DB" env-required:"true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"50"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env-default:"1m"`
}

type Server struct {
	Host    string        `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type Slack struct {
	Token           string        `env:"SLACK_BOT_TOKEN" env-required:"true"`
	BaseURL         string        `yaml:"base_url" env-default:"https://slack.com/api"`
	Timeout         time.Duration `yaml:"timeout" env-default:"10s"`
	PageSize        int           `yaml:"page_size" env-default:"200"`
	MinSendInterval time.Duration `yaml:"min_send_interval" env-default:"1s"`
}

type Linear struct {
	APIKey   string        `env:"LINEAR_API_KEY" env-required:"true"`
	BaseURL  string        `yaml:"base_url" env-default:"https://api.linear.app/graphql"`
	Timeout  time.Duration `yaml:"timeout" env-default:"15s"`
	PageSize int           `yaml:"page_size" env-default:"50"`
}

// GitHub enriches user links with source-hosting identities. The token
// is optional; when empty the sync pipeline skips enrichment.
type GitHub struct {
	Token string `env:"GITHUB_TOKEN"`
	Org   string `yaml:"org" env:"GITHUB_ORG"`
}

type Schedule struct {
	WeeklyReport string `yaml:"weekly_report" env-default:"0 9 * * 1"`
	UserSync     string `yaml:"user_sync" env-default:"30 2 * * *"`
	Timezone     string `yaml:"timezone" env-default:"UTC"`
}

// Load reads the file named by CONFIG_PATH and layers environment
// variables over it. Secrets never live in the file, only in the
// environment.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		return nil, errors.New("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}
