// Package config loads server configuration from YAML and environment
// variables, environment taking precedence inside cleanenv's rules.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root server configuration.
// Source priority:
//  1. explicit path passed to MustLoad/Load;
//  2. CONFIG_PATH environment variable;
//  3. ./local.yaml in the working directory;
//  4. environment variables only.
type Config struct {
	Port   string       `yaml:"port" env:"PORT" env-default:"8080"`
	AWS    AWSConfig    `yaml:"aws"`
	Auth   AuthConfig   `yaml:"auth"`
	Socket SocketConfig `yaml:"socket"`
	Feed   FeedConfig   `yaml:"feed"`
	Chat   ChatConfig   `yaml:"chat"`
}

// AWSConfig - region and the media bucket.
type AWSConfig struct {
	Region   string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	S3Bucket string `yaml:"s3_bucket" env:"S3_BUCKET_NAME"`
}

// AuthConfig - verification key for bearer tokens. Issuance lives in the
// external auth system; both sides share this secret.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
}

// SocketConfig - realtime gateway options. When RedisHost is set the
// socket.io Redis adapter is enabled so room broadcasts reach every gateway
// instance behind the load balancer.
type SocketConfig struct {
	RedisHost   string `yaml:"redis_host" env:"SOCKET_REDIS_HOST"`
	RedisPort   string `yaml:"redis_port" env:"SOCKET_REDIS_PORT" env-default:"6379"`
	RedisPrefix string `yaml:"redis_prefix" env:"SOCKET_REDIS_PREFIX" env-default:"socket.io"`
}

// FeedConfig - candidate feed limits.
type FeedConfig struct {
	CandidateLimit int `yaml:"candidate_limit" env:"CANDIDATE_LIMIT" env-default:"10"`
}

// ChatConfig - message paging defaults.
type ChatConfig struct {
	PageSize int `yaml:"page_size" env:"CHAT_PAGE_SIZE" env-default:"20"`
}

// MustLoad is Load with panic on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load loads configuration by priority:
// 1) explicit path; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide a path, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Feed.CandidateLimit <= 0 {
		return fmt.Errorf("feed.candidate_limit must be > 0")
	}
	if c.Chat.PageSize <= 0 {
		return fmt.Errorf("chat.page_size must be > 0")
	}
	return nil
}
