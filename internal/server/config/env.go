package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration from BOOKSHELF_* environment variables.
// Unset variables leave the current value untouched; unparsable numeric or
// duration values are ignored rather than fatal, matching flag behavior
// where the previous layer's value wins.
func parseEnv(config *Config) {
	setString(&config.EndpointAddrHTTP, "BOOKSHELF_ADDRESS")
	setString(&config.DatabaseDSN, "BOOKSHELF_DATABASE_DSN")
	setString(&config.SecretKey, "BOOKSHELF_SECRET_KEY")
	setDuration(&config.TokenValidityDuration, "BOOKSHELF_TOKEN_TTL")
	setInt(&config.BcryptCost, "BOOKSHELF_BCRYPT_COST")
	setString(&config.RedisAddr, "BOOKSHELF_REDIS_ADDR")
	setString(&config.RecommenderBaseURL, "BOOKSHELF_RECOMMENDER_URL")
	setDuration(&config.RecommenderTimeout, "BOOKSHELF_RECOMMENDER_TIMEOUT")
	setString(&config.S3RootUser, "BOOKSHELF_S3_ROOT_USER")
	setString(&config.S3RootPassword, "BOOKSHELF_S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "BOOKSHELF_S3_BUCKET")
	setString(&config.S3Region, "BOOKSHELF_S3_REGION")
	setString(&config.S3BaseEndpoint, "BOOKSHELF_S3_BASE_ENDPOINT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
