package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sakashimaa/go-banking-saga/pkg/utils"
)

type Config struct {
	Env      string   `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTP     `yaml:"http"`
	Postgres PG       `yaml:"postgres"`
	Kafka    Kafka    `yaml:"kafka"`
	Resolver Resolver `yaml:"resolver"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Kafka struct {
	Brokers       string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	RequestTopic  string `yaml:"request_topic" env:"KAFKA_REQUEST_TOPIC" env-default:"account-creation-requests"`
	ResponseTopic string `yaml:"response_topic" env:"KAFKA_RESPONSE_TOPIC" env-default:"account-creation-responses"`
	GroupID       string `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"account-service-group"`
}

type Resolver struct {
	RecentWindow time.Duration `yaml:"recent_window" env:"RESOLVER_RECENT_WINDOW" env-default:"3s"`
	PollTimeout  time.Duration `yaml:"poll_timeout" env:"RESOLVER_POLL_TIMEOUT" env-default:"500ms"`
}

func (k Kafka) BrokerList() []string {
	return strings.Split(k.Brokers, ",")
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("error reading config from env: %v", err)
		}

		return &cfg
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
