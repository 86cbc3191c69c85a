package main

import (
	"log"

	"library-api/internal/shared/utils"
)

// Config holds the worker's own settings, separate from the container
// config so the worker can point at a different Redis if needed.
type Config struct {
	RedisAddr     string
	RedisPassword string
	CleanupCron   string
}

func loadConfig() *Config {
	cfg := &Config{
		RedisAddr:     utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		RedisPassword: utils.GetEnvVariable("REDIS_PASSWORD", ""),
		CleanupCron:   utils.GetEnvVariable("CLEANUP_TEMP_UPLOADS_CRON", "0 3 * * *"),
	}

	log.Printf("[Config] Redis: %s, Cleanup cron: %s", cfg.RedisAddr, cfg.CleanupCron)

	return cfg
}
