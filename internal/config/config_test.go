package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLIPWAY_LISTEN_ADDR", "")
	t.Setenv("SLIPWAY_PROXY_DOMAIN", "")

	cfg := Load()
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "localhost", cfg.ProxyDomain)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SLIPWAY_LISTEN_ADDR", ":8080")
	t.Setenv("SLIPWAY_PROXY_DOMAIN", "apps.example.com")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "apps.example.com", cfg.ProxyDomain)
}
