package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		// Driver is either sqlite3 (default) or postgres.
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Card struct {
		BIN string `mapstructure:"bin"`
	} `mapstructure:"card"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var AppConfig Config

// LoadConfig reads config.yml from the given path; every key has a default,
// so a missing file is fine.
func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "cards.s3db")
	viper.SetDefault("card.bin", "400000")
	viper.SetDefault("log.level", "warn")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file, %s", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
