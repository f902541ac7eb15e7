package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadEnv reads .env style files into the process environment. Variables
// that are already set are left alone, so the real environment always wins.
// Missing files are skipped; with no arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", f, err))
		}
	}
	return nil
}

// Load reads the given .env files (or ".env") and parses the environment
// into a new T using its `env` struct tags. There is no caching: callers load
// once at startup and pass the value on.
//
//	type Limits struct {
//		MaxDepth int           `env:"GUARD_MAX_DEPTH" envDefault:"50"`
//		Timeout  time.Duration `env:"GUARD_TIMEOUT" envDefault:"5s"`
//	}
//
//	limits, err := config.Load[Limits]()
func Load[T any](files ...string) (T, error) {
	if err := LoadEnv(files...); err != nil {
		var zero T
		return zero, err
	}
	return Parse[T]()
}

// Parse reads the current environment into a new T without touching files.
func Parse[T any]() (T, error) {
	v, err := env.ParseAs[T]()
	if err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// MustLoad is Load that panics on error, for use in main.
func MustLoad[T any](files ...string) T {
	v, err := Load[T](files...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return v
}
