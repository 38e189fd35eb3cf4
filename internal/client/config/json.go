package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dkovalev/lotkeeper/internal/flagx"
	"github.com/dkovalev/lotkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals use
// timex.Duration so JSON can carry "3s" strings or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	DBPath              string         `json:"db_path"`
	DeviceToken         string         `json:"device_token"`
	UserID              string         `json:"user_id"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Absent flag means no JSON stage. Read and unmarshal errors panic; this
// runs once at startup and a broken config file should stop the program.
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

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.DeviceToken != "" {
		cfg.DeviceToken = jc.DeviceToken
	}
	if jc.UserID != "" {
		cfg.UserID = jc.UserID
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
