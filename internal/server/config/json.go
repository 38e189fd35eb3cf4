package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dkovalev/lotkeeper/internal/flagx"
	"github.com/dkovalev/lotkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	EndpointAddr      string         `json:"endpoint_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	S3Region          string         `json:"s3_region"`
	S3Bucket          string         `json:"s3_bucket"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	UploadURLExpiry   timex.Duration `json:"upload_url_expiry"`
	DownloadURLExpiry timex.Duration `json:"download_url_expiry"`
}

// parseJson overlays Config with values from the file named by -c/-config.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.UploadURLExpiry.Duration != 0 {
		cfg.UploadURLExpiry = time.Duration(jc.UploadURLExpiry.Duration)
	}
	if jc.DownloadURLExpiry.Duration != 0 {
		cfg.DownloadURLExpiry = time.Duration(jc.DownloadURLExpiry.Duration)
	}
}
