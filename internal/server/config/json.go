package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophnet/internal/flagx"
	"github.com/dmitrijs2005/gophnet/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// "720h"-style strings or integer nanoseconds. Only non-zero values override
// the target Config.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	LogLevel              string         `json:"log_level"`
	MediaBackend          string         `json:"media_backend"`
	MediaDir              string         `json:"media_dir"`
	MaxUploadSize         int64          `json:"max_upload_size"`
	DefaultPageSize       int            `json:"default_page_size"`
	MaxPageSize           int            `json:"max_page_size"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c / -config into config.
// Nothing happens when the flag is absent; unreadable or invalid files panic.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.MediaBackend, c.MediaBackend)
	setString(&config.MediaDir, c.MediaDir)
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.DefaultPageSize > 0 {
		config.DefaultPageSize = c.DefaultPageSize
	}
	if c.MaxPageSize > 0 {
		config.MaxPageSize = c.MaxPageSize
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
