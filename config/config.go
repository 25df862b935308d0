package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Remote platform API (catalog, users and booking records live behind it).
	PlatformBaseURL string        `mapstructure:"PLATFORM_BASE_URL"`
	PlatformAPIKey  string        `mapstructure:"PLATFORM_API_KEY"`
	PlatformTimeout time.Duration `mapstructure:"PLATFORM_TIMEOUT"`

	// Hosted payment gateway.
	GatewayKeyID       string        `mapstructure:"GATEWAY_KEY_ID"`
	GatewayKeySecret   string        `mapstructure:"GATEWAY_KEY_SECRET"`
	GatewayCheckoutURL string        `mapstructure:"GATEWAY_CHECKOUT_URL"`
	PaymentTimeout     time.Duration `mapstructure:"PAYMENT_TIMEOUT"`
	Currency           string        `mapstructure:"CURRENCY"`

	// Operator console auth.
	OperatorJWTSecret string `mapstructure:"OPERATOR_JWT_SECRET"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLedgerDB int    `mapstructure:"REDIS_LEDGER_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("PLATFORM_BASE_URL", "http://localhost:9090")
	viper.SetDefault("PLATFORM_API_KEY", "")
	viper.SetDefault("PLATFORM_TIMEOUT", "10s")
	viper.SetDefault("GATEWAY_KEY_ID", "")
	viper.SetDefault("GATEWAY_KEY_SECRET", "")
	viper.SetDefault("GATEWAY_CHECKOUT_URL", "https://checkout.gateway.example/v1")
	viper.SetDefault("PAYMENT_TIMEOUT", "15m")
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("OPERATOR_JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LEDGER_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
