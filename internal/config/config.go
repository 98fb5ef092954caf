package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the API server settings, read from the environment. A .env
// file in the working directory is loaded first when present.
type Config struct {
	// ListenAddr is the address the control-plane API listens on.
	ListenAddr string
	// ProxyDomain is the base domain for app subdomains, e.g. "localhost"
	// routes myapp.localhost to the container named myapp.
	ProxyDomain string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:  getEnv("SLIPWAY_LISTEN_ADDR", ":3000"),
		ProxyDomain: getEnv("SLIPWAY_PROXY_DOMAIN", "localhost"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
