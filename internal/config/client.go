package config

import (
	"os"
	"path/filepath"
	"time"
)

// ClientConfig drives the roadside terminal client.
type ClientConfig struct {
	APIURL          string        `yaml:"api_url"`
	SessionFile     string        `yaml:"session_file"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	DriverPoll      time.Duration `yaml:"driver_poll"`
	MechanicPoll    time.Duration `yaml:"mechanic_poll"`
	LocationPing    time.Duration `yaml:"location_ping"`
	LocationURL     string        `yaml:"location_url"`
	LocationTimeout time.Duration `yaml:"location_timeout"`
	Push            bool          `yaml:"push"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file"`
}

func LoadClient() *ClientConfig {
	return &ClientConfig{
		APIURL:          getEnv("ROADSIDE_API_URL", "http://localhost:8000"),
		SessionFile:     getEnv("ROADSIDE_SESSION_FILE", defaultSessionFile()),
		HTTPTimeout:     getEnvAsDuration("ROADSIDE_HTTP_TIMEOUT", 10*time.Second),
		DriverPoll:      getEnvAsDuration("ROADSIDE_DRIVER_POLL", 5*time.Second),
		MechanicPoll:    getEnvAsDuration("ROADSIDE_MECHANIC_POLL", 5*time.Second),
		LocationPing:    getEnvAsDuration("ROADSIDE_LOCATION_PING", 10*time.Second),
		LocationURL:     getEnv("ROADSIDE_LOCATION_URL", ""),
		LocationTimeout: getEnvAsDuration("ROADSIDE_GEO_TIMEOUT", 15*time.Second),
		Push:            getEnvAsBool("ROADSIDE_PUSH", false),
		LogLevel:        getEnv("ROADSIDE_LOG_LEVEL", "warn"),
		LogFile:         getEnv("ROADSIDE_LOG_FILE", ""),
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "roadside", "session.json")
}
