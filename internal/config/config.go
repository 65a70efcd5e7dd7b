package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultMprisService   = ""
	DefaultLrclibGetURL   = "https://lrclib.net/api/get"
	DefaultOffsetStep     = 0.5
	DefaultFineOffsetStep = 0.1
	HTTPTimeoutSeconds    = 10
	PollInterval          = 100 * time.Millisecond
	CacheTTL              = 30 * time.Minute
)

type Config struct {
	MprisService   string
	LrclibURL      string
	SyncOffset     float64
	OffsetStep     float64
	FineOffsetStep float64
	HideHeader     bool
	LogFile        string
	LogLevel       string
}

// Load reads an optional .env file from the working directory, then the
// environment. Variables already set in the environment win over .env.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MprisService:   getEnvOrDefault("MPRIS_SERVICE", DefaultMprisService),
		LrclibURL:      getEnvOrDefault("LRCLIB_GET_URL", DefaultLrclibGetURL),
		SyncOffset:     getFloatOrDefault("SYNC_OFFSET", 0),
		OffsetStep:     getPositiveFloatOrDefault("OFFSET_STEP", DefaultOffsetStep),
		FineOffsetStep: getPositiveFloatOrDefault("FINE_OFFSET_STEP", DefaultFineOffsetStep),
		HideHeader:     getBool("HIDE_HEADER"),
		LogFile:        getEnvOrDefault("LRCPLAY_LOG_FILE", ""),
		LogLevel:       getEnvOrDefault("LRCPLAY_LOG_LEVEL", "info"),
	}
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getFloatOrDefault(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getEnvOrDefault(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getPositiveFloatOrDefault(key string, fallback float64) float64 {
	value := getFloatOrDefault(key, fallback)
	if value <= 0 {
		return fallback
	}
	return value
}

func getBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
