package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBDSN     string
	LogFile   string
	RedisAddr string // empty disables cache invalidation
	StoreTZ   string // IANA zone the shop operates in
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:      getenv("PORT", "8080"),
		DBDSN:     getenv("DB_DSN", "kurtikart.db"),
		LogFile:   getenv("LOG_FILE", "./kurtikart.log"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		StoreTZ:   getenv("STORE_TZ", "Asia/Kolkata"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REDIS_ADDR=%s STORE_TZ=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.RedisAddr, cfg.StoreTZ)
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
