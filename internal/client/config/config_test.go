package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerEndpointAddr)
	assert.Equal(t, "lotkeeper.db", c.DBPath)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
}

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-a", "http://srv:9090", "-d", "/tmp/x.db", "-t", "tok", "-u", "u1", "-i", "10"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://srv:9090", cfg.ServerEndpointAddr)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "tok", cfg.DeviceToken)
	assert.Equal(t, "u1", cfg.UserID)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_endpoint_addr": "http://json:1234",
		"online_check_interval": "7s"
	}`), 0o600))

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://json:1234", cfg.ServerEndpointAddr)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	// untouched fields keep their defaults
	assert.Equal(t, "lotkeeper.db", cfg.DBPath)
}
