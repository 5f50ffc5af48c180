package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SNS      SNSConfig      `mapstructure:"sns"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Janitor  JanitorConfig  `mapstructure:"janitor"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// RedisConfig configures the presence tracker backend.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PresenceTTL time.Duration `mapstructure:"presence_ttl"`
}

// SNSConfig configures the deferred push channel.
type SNSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	FCMPlatformARN  string `mapstructure:"fcm_platform_arn"`
	APNSPlatformARN string `mapstructure:"apns_platform_arn"`
}

// JWTConfig defines JWT specific configuration. Tokens are issued by the
// platform's auth service; this subsystem only validates them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// JanitorConfig drives the background maintenance loop.
type JanitorConfig struct {
	QuestExpiryInterval time.Duration `mapstructure:"quest_expiry_interval"`
	CleanupInterval     time.Duration `mapstructure:"cleanup_interval"`
	NotificationAgeDays int           `mapstructure:"notification_age_days"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// Nested keys map to env vars: redis.presence_ttl -> REDIS_PRESENCE_TTL
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "sikadvoltz")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.presence_ttl", "60s")
	viper.SetDefault("sns.region", "us-east-1")
	viper.SetDefault("janitor.quest_expiry_interval", "10m")
	viper.SetDefault("janitor.cleanup_interval", "24h")
	viper.SetDefault("janitor.notification_age_days", 30)

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; env vars and defaults carry the day.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
