package config

import (
	"github.com/rs/zerolog/log"
)

// Database configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	DBHost     string
	DBPort     uint64
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// loadDBConfig loads database configuration from environment variables.
// This function is called by LoadConfig() in config.go.
func loadDBConfig() error {
	log.Info().Msg("Loading database configuration from environment variables...")

	var err error

	DBHost, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}

	DBPort, err = getEnvAsUint64("DB_PORT")
	if err != nil {
		return err
	}

	DBUser, err = getEnv("DB_USER")
	if err != nil {
		return err
	}

	DBPassword, err = getEnv("DB_PASSWORD")
	if err != nil {
		return err
	}

	DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}

	DBSSLMode, err = getEnv("DB_SSLMODE")
	if err != nil {
		return err
	}

	log.Debug().
		Str("DBHost", DBHost).
		Uint64("DBPort", DBPort).
		Str("DBName", DBName).
		Msg("Database configuration loaded successfully.")

	return nil
}
