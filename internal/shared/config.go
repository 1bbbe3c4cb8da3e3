package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	AuthMode       string // session | jwt
	JWTSecret      string
	JWTIssuer      string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	RateRPS        float64
	RateBurst      int
	TrustProxy     bool
	APIBase        string
	APIToken       string
	ImportWorkers  int
	ImportRPS      int
}

func Load() Config {
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		AuthMode:       strings.ToLower(env("AUTH_MODE", "session")),
		JWTSecret:      env("JWT_SECRET", ""),
		JWTIssuer:      env("JWT_ISSUER", "reviews"),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		MaxBodyBytes:   int64(atoi("MAX_BODY_BYTES", 1<<20)),
		RateRPS:        atof("RATE_LIMIT_RPS", 0),
		RateBurst:      atoi("RATE_LIMIT_BURST", 20),
		TrustProxy:     env("TRUST_PROXY", "false") == "true",
		APIBase:        env("API_BASE_URL", "http://localhost:8080"),
		APIToken:       env("API_TOKEN", ""),
		ImportWorkers:  atoi("IMPORT_WORKERS", 8),
		ImportRPS:      atoi("IMPORT_RPS", 10),
	}
	switch c.AuthMode {
	case "session":
	case "jwt":
		if c.JWTSecret == "" {
			log.Warn().Msg("AUTH_MODE=jwt but JWT_SECRET is empty")
		}
	default:
		log.Warn().Str("auth_mode", c.AuthMode).Msg("unknown AUTH_MODE, using session")
		c.AuthMode = "session"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
	}
	return def
}
