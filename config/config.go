package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Data   DataConfig
	ETA    ETAConfig
	Redis  RedisConfig
	CORS   CORSConfig
}

type ServerConfig struct {
	Addr      string
	PublicURL string
}

type DataConfig struct {
	Dir string
}

type ETAConfig struct {
	AverageSpeedMPH float64
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	RankTTLSeconds int
}

type CORSConfig struct {
	AllowedOrigins []string
}

var Cfg *Config

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.publicurl", "http://localhost:8080")
	viper.SetDefault("data.dir", "data")
	viper.SetDefault("eta.averagespeedmph", 20.0)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.rankttlseconds", 5)
	viper.SetDefault("cors.allowedorigins", []string{"*"})

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file, %s", err)
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
