package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvflow/backend/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadReadsAllSections(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
  body_limit: 1048576
database:
  host: db.internal
  port: 5433
  user: app
  password: secret
  name: csvflow
  sslmode: require
logger:
  level: debug
storage:
  backend: sftp
  base_dir: blobs
  sftp:
    host: files.internal
    port: 2222
    user: uploader
    base_dir: /srv/blobs
worker:
  count: 8
  queue_size: 128
auth:
  jwt_secret: super-secret
  access_ttl: 30m
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Address())
	assert.Equal(t, 1048576, cfg.Server.BodyLimit)
	assert.Equal(t, "host=db.internal port=5433 user=app password=secret dbname=csvflow sslmode=require", cfg.Database.DSN())
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "sftp", cfg.Storage.Backend)
	assert.Equal(t, "files.internal", cfg.Storage.SFTP.Host)
	assert.Equal(t, 2222, cfg.Storage.SFTP.Port)
	assert.Equal(t, 8, cfg.Worker.Count)
	assert.Equal(t, 128, cfg.Worker.QueueSize)
	assert.Equal(t, "super-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.BaseDir)
	assert.Equal(t, 4, cfg.Worker.Count)
	assert.Equal(t, 64, cfg.Worker.QueueSize)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
