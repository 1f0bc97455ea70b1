package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"net/url"
	"strings"
	"sync"
)

type Listen struct {
	BindIp         string `yaml:"bind_ip" env:"LISTEN_BIND_IP" env-default:"0.0.0.0"`
	Port           string `yaml:"port" env:"LISTEN_PORT" env-default:"8000"`
	RequestTimeout int    `yaml:"request_timeout" env:"LISTEN_REQUEST_TIMEOUT" env-default:"10"`
}

type MongoConfig struct {
	Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
	User     string `yaml:"user" env:"MONGO_USER" env-default:""`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"qrlink"`
	// Timeout per store call, seconds
	Timeout int `yaml:"timeout" env:"MONGO_TIMEOUT" env-default:"5"`
}

type ScanConfig struct {
	BaseURL string `yaml:"base_url" env:"SCAN_BASE_URL" env-required:"true" env-description:"redirect endpoint, e.g. https://qr.example.com/qr/scan"`
}

type StorageConfig struct {
	Enabled         bool   `yaml:"enabled" env:"STORAGE_ENABLED" env-default:"false"`
	Bucket          string `yaml:"bucket" env:"STORAGE_BUCKET" env-default:""`
	CredentialsFile string `yaml:"credentials_file" env:"STORAGE_CREDENTIALS" env-default:""`
	Prefix          string `yaml:"prefix" env:"STORAGE_PREFIX" env-default:"qr_codes"`
	MakePublic      bool   `yaml:"make_public" env:"STORAGE_MAKE_PUBLIC" env-default:"true"`
}

type ImageConfig struct {
	Size     int    `yaml:"size" env:"IMAGE_SIZE" env-default:"256"`
	Recovery string `yaml:"recovery" env:"IMAGE_RECOVERY" env-default:"medium"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	// TTL of cached scan targets, seconds
	TTL int `yaml:"ttl" env:"REDIS_TTL" env-default:"30"`
}

type CorsConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:4200"`
}

type Config struct {
	ProjectName string        `yaml:"project_name" env:"PROJECT_NAME" env-default:"QR Backend"`
	Env         string        `yaml:"env" env:"ENV" env-default:"local"`
	Listen      Listen        `yaml:"listen"`
	Mongo       MongoConfig   `yaml:"mongo"`
	Scan        ScanConfig    `yaml:"scan"`
	Storage     StorageConfig `yaml:"storage"`
	Image       ImageConfig   `yaml:"image"`
	Redis       RedisConfig   `yaml:"redis"`
	Cors        CorsConfig    `yaml:"cors"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	once.Do(func() {
		conf, err := Load(path)
		if err != nil {
			desc, _ := cleanenv.GetDescription(&Config{}, nil)
			log.Fatal(fmt.Errorf("config: %s; %s", err, desc))
		}
		instance = conf
	})
	return instance
}

// Load reads the yaml file with environment overrides and validates the result
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) Validate() error {
	base, err := NormalizeBaseURL(c.Scan.BaseURL)
	if err != nil {
		return err
	}
	c.Scan.BaseURL = base
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be positive when redis is enabled")
	}
	if c.Image.Size <= 0 {
		return fmt.Errorf("image.size must be positive")
	}
	if c.Mongo.Timeout <= 0 {
		return fmt.Errorf("mongo.timeout must be positive")
	}
	return nil
}

// NormalizeBaseURL checks for an absolute http(s) url and trims trailing slashes
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("scan.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("scan.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scan.base_url: scheme must be http or https")
	}
	if u.Host == "" {
		return "", fmt.Errorf("scan.base_url: host is missing")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("scan.base_url: query and fragment are not allowed")
	}
	return strings.TrimRight(raw, "/"), nil
}

// Origins allowed CORS origins; empty list allows any origin
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.Cors.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
