// Package config loads typed configuration from environment variables.
//
// Structs describe their variables with github.com/caarlos0/env tags.
// Optional .env files are read first with github.com/joho/godotenv and never
// override variables that are already set.
//
//	cfg, err := config.Load[guard.Config]()
//	if err != nil {
//	    return err
//	}
package config
