package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophnet/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GOPHNET_"

// parseEnv overlays GOPHNET_* variables. A dotenv file named by -env is loaded
// first and must exist; otherwise ./.env is loaded when present. Variables
// already set in the process environment win over dotenv values.
func parseEnv(config *Config, args []string) {
	if envFile := flagx.EnvFileFlag(args); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	envString(&config.EndpointAddrHTTP, "ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	if v, ok := lookup("TOKEN_VALIDITY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.MediaBackend, "MEDIA_BACKEND")
	envString(&config.MediaDir, "MEDIA_DIR")
	if v, ok := lookup("MAX_UPLOAD_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		config.MaxUploadSize = n
	}
	envInt(&config.DefaultPageSize, "DEFAULT_PAGE_SIZE")
	envInt(&config.MaxPageSize, "MAX_PAGE_SIZE")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if v, ok := lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}
