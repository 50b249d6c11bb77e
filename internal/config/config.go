package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type OrderConfig struct {
	Env            string `yaml:"env"`
	HTTPServer     `yaml:"http_server"`
	OrderDB        `yaml:"order_db"`
	LogConfig      `yaml:"log_config"`
	KafkaService   `yaml:"kafka-service"`
	StorageService `yaml:"storage-service"`
	PaymentService `yaml:"payment-service"`
	Payment        `yaml:"payment"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type OrderDB struct {
	Dsn           string `yaml:"dsn"`
	MigrationPath string `yaml:"migration_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	OrderEventsTopic   string `yaml:"order_events_topic" env-default:"orders.events"`
	PaymentEventsTopic string `yaml:"payment_events_topic" env-default:"payments.events"`
}

type StorageService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type PaymentService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type Payment struct {
	WaitTimeout           time.Duration `yaml:"wait_timeout" env-default:"15m"`
	TokenRefreshThreshold time.Duration `yaml:"token_refresh_threshold" env-default:"1m"`
	PollInterval          time.Duration `yaml:"poll_interval" env-default:"10s"`
	PollBatchSize         int           `yaml:"poll_batch_size" env-default:"10"`
	TimeoutInterval       time.Duration `yaml:"timeout_interval" env-default:"60s"`
}

func MustLoad() *OrderConfig {

	// Processing env config variable and file
	configPath := os.Getenv("ORDER_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("ORDER_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg OrderConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
