package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーションの設定を表す。
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Retry     RetryConfig     `yaml:"retry"`
}

// AppConfig はアプリケーション情報の設定。
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Tier        string `yaml:"tier"`
}

// ServerConfig は REST サーバーの設定。
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GRPCConfig は gRPC サーバーの設定。
type GRPCConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig はデータベースの設定。
type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	DBName       string        `yaml:"dbname"`
	SSLMode      string        `yaml:"sslmode"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	LockTimeout  time.Duration `yaml:"lock_timeout"`
}

// RedisConfig はキャッシュ用 Redis の設定。
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
	Channel   string `yaml:"channel"`
}

// KafkaConfig は Kafka の設定。Brokers が空の場合、Kafka 配信は無効。
type KafkaConfig struct {
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics は Kafka のトピック設定。
type KafkaTopics struct {
	Publish string `yaml:"publish"`
}

// BootstrapConfig は初回起動時に読み込むフォールバックファイルの設定。
// ストアが空のときだけ 1 回参照され、以後は読み直されない。
type BootstrapConfig struct {
	Path string `yaml:"path"`
}

// RetryConfig はストア操作のリトライポリシー設定。
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Jitter       bool          `yaml:"jitter"`
}

// Load は設定ファイルから Config を読み込む。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Validate は設定値のバリデーションを行う。
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must not be negative")
	}
	return nil
}

// BroadcastChannel はブロードキャスト用チャネル名を返す。未設定時は既定値。
func (c *RedisConfig) BroadcastChannel() string {
	if c.Channel == "" {
		return "config_changes"
	}
	return c.Channel
}

// DSN はデータベース接続文字列を返す。
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
