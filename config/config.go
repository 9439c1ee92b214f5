package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	Catalog  CatalogConfig
	Order    OrderConfig
	Web      WebConfig
	Telegram TelegramConfig
	DB       DBConfig
	Log      LogConfig
}

type CatalogConfig struct {
	Source      string `envconfig:"CATALOG_SOURCE" default:"file"`
	Path        string `envconfig:"CATALOG_PATH" default:"catalog.xlsx"`
	ImagesDir   string `envconfig:"IMAGES_DIR" default:"images"`
	Placeholder string `envconfig:"PLACEHOLDER_IMAGE" default:"https://via.placeholder.com/250x180/4CAF50/white?text=Dish+Image"`
}

type OrderConfig struct {
	ServiceURL   string `envconfig:"ORDER_SERVICE_URL" default:"https://wa.me"`
	Recipient    string `envconfig:"ORDER_RECIPIENT" default:"919946294194"`
	Currency     string `envconfig:"ORDER_CURRENCY" default:"₹"`
	MaxQtyPerAdd int    `envconfig:"MAX_QTY_PER_ADD" default:"20"`
}

type WebConfig struct {
	Addr       string        `envconfig:"WEB_ADDR" default:":8080"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"2h"`
}

type TelegramConfig struct {
	Token string `envconfig:"TOKEN"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Database string `envconfig:"DB_NAME" default:"catering"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceFile, CatalogSourcePostgres:
	default:
		return errors.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}
	if c.Catalog.Source == CatalogSourceFile && strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("CATALOG_PATH is required for file catalog")
	}
	if strings.TrimSpace(c.Order.Recipient) == "" {
		return errors.New("ORDER_RECIPIENT not set")
	}
	u, err := url.Parse(c.Order.ServiceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("invalid ORDER_SERVICE_URL %q", c.Order.ServiceURL)
	}
	if c.Order.MaxQtyPerAdd <= 0 {
		return errors.New("MAX_QTY_PER_ADD must be positive")
	}
	return nil
}
