// Package config loads runtime settings from a .env file and DRAFTDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"draft-desk/internal/store"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	Storage            string
	DataFile           string
	BadgerPath         string
	RedisAddr          string
	RedisKey           string
	LogLevel           string
	LogDev             bool
	EnforceImageLimits bool
	MaxBodyBytes       int64
	ImportTimeout      time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:               ":8080",
		Storage:            store.BackendFile,
		DataFile:           "data/drafts.json",
		BadgerPath:         "./badger-data",
		RedisAddr:          "localhost:6379",
		RedisKey:           "drafts:collection",
		LogLevel:           "info",
		LogDev:             false,
		EnforceImageLimits: true,
		MaxBodyBytes:       80 << 20,
		ImportTimeout:      30 * time.Second,
	}
}

// Load reads envFiles (".env" when none are given) and then the environment.
// A missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv applies DRAFTDESK_* variables on top of the defaults.
func FromEnv() (Config, error) {
	cfg := Default()
	var err error

	cfg.Addr = envString("DRAFTDESK_ADDR", cfg.Addr)
	cfg.Storage = envString("DRAFTDESK_STORAGE", cfg.Storage)
	cfg.DataFile = envString("DRAFTDESK_DATA_FILE", cfg.DataFile)
	cfg.BadgerPath = envString("DRAFTDESK_BADGER_PATH", cfg.BadgerPath)
	cfg.RedisAddr = envString("DRAFTDESK_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisKey = envString("DRAFTDESK_REDIS_KEY", cfg.RedisKey)
	cfg.LogLevel = envString("DRAFTDESK_LOG_LEVEL", cfg.LogLevel)

	if cfg.LogDev, err = envBool("DRAFTDESK_LOG_DEV", cfg.LogDev); err != nil {
		return Config{}, err
	}
	if cfg.EnforceImageLimits, err = envBool("DRAFTDESK_ENFORCE_IMAGE_LIMITS", cfg.EnforceImageLimits); err != nil {
		return Config{}, err
	}
	if v, ok := lookup("DRAFTDESK_MAX_BODY_BYTES"); ok {
		if cfg.MaxBodyBytes, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("DRAFTDESK_MAX_BODY_BYTES: %w", err)
		}
	}
	if v, ok := lookup("DRAFTDESK_IMPORT_TIMEOUT"); ok {
		if cfg.ImportTimeout, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("DRAFTDESK_IMPORT_TIMEOUT: %w", err)
		}
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Storage {
	case store.BackendFile:
		if c.DataFile == "" {
			return errors.New("data file path is required for file storage")
		}
	case store.BackendBadger:
		if c.BadgerPath == "" {
			return errors.New("badger path is required for badger storage")
		}
	case store.BackendRedis:
		if c.RedisAddr == "" || c.RedisKey == "" {
			return errors.New("redis address and key are required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max body bytes must be positive")
	}
	return nil
}

// StoreOptions maps the config onto store.Open options.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:    c.Storage,
		DataFile:   c.DataFile,
		BadgerPath: c.BadgerPath,
		RedisAddr:  c.RedisAddr,
		RedisKey:   c.RedisKey,
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envString(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v, ok := lookup(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
