package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/slidedeck/internal/flagx"
	"github.com/dmitrijs2005/slidedeck/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Only keys present in
// the file override the current values, so every field is a pointer.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	S3AccessKeyID               *string         `json:"s3_access_key_id"`
	S3SecretAccessKey           *string         `json:"s3_secret_access_key"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	S3PublicBaseURL             *string         `json:"s3_public_base_url"`
	MaxUploadBytes              *int64          `json:"max_upload_bytes"`
	MaxImageDimension           *uint           `json:"max_image_dimension"`
	MaxImagePixels              *uint64         `json:"max_image_pixels"`
	LogBackend                  *string         `json:"log_backend"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (if any) into config.
// An unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	set(&config.S3AccessKeyID, c.S3AccessKeyID)
	set(&config.S3SecretAccessKey, c.S3SecretAccessKey)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	set(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	set(&config.MaxUploadBytes, c.MaxUploadBytes)
	set(&config.MaxImageDimension, c.MaxImageDimension)
	set(&config.MaxImagePixels, c.MaxImagePixels)
	set(&config.LogBackend, c.LogBackend)
	set(&config.LogLevel, c.LogLevel)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
