package config

import (
	"log"
	"os"
)

type Config struct {
	ListenAddr string
	APIURL     string
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func Load() *Config {
	return &Config{
		ListenAddr: getenv("GATEWAY_ADDR", ":8000"),
		APIURL:     must(os.Getenv("API_URL"), "API_URL"),
	}
}
