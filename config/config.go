package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderFMP   = "fmp"
	ProviderYahoo = "yahoo"
)

type Config struct {
	// Client side: the interaction controller and its remote collaborators.
	APIBaseURL     string        `json:"api_base_url"`
	Debounce       time.Duration `json:"debounce"`
	RequestTimeout time.Duration `json:"request_timeout"`

	// Backend side.
	ListenAddr   string   `json:"listen_addr"`
	Provider     string   `json:"provider"`
	FMPAPIKey    string   `json:"fmp_api_key"`
	FMPBaseURL   string   `json:"fmp_base_url"`
	SearchLimit  int      `json:"search_limit"`
	HistoryYears int      `json:"history_years"`
	CORSOrigins  []string `json:"cors_origins"`

	// Logging
	LogLevel       string `json:"log_level"`
	LogFormat      string `json:"log_format"`
	LogFileEnabled bool   `json:"log_file_enabled"`
	LogDir         string `json:"log_dir"`

	Debug bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		APIBaseURL:     "http://127.0.0.1:8000",
		Debounce:       300 * time.Millisecond,
		RequestTimeout: 15 * time.Second,

		ListenAddr:   ":8000",
		Provider:     ProviderFMP,
		FMPBaseURL:   "https://financialmodelingprep.com/api/v3",
		SearchLimit:  10,
		HistoryYears: 20,
		CORSOrigins:  []string{"*"},

		LogLevel:  "info",
		LogFormat: "pretty",
		LogDir:    filepath.Join(currentDir, "logs"),
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("STOCKINFO_API_URL"); val != "" {
		c.APIBaseURL = strings.TrimRight(val, "/")
	}
	if val := os.Getenv("STOCKINFO_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Debounce = d
		}
	}
	if val := os.Getenv("STOCKINFO_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.RequestTimeout = d
		}
	}

	if val := os.Getenv("STOCKINFO_LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}
	if val := os.Getenv("STOCKINFO_PROVIDER"); val != "" {
		c.Provider = strings.ToLower(val)
	}
	if val := os.Getenv("FMP_API_KEY"); val != "" {
		c.FMPAPIKey = val
	}
	if val := os.Getenv("FMP_BASE_URL"); val != "" {
		c.FMPBaseURL = strings.TrimRight(val, "/")
	}
	if val := os.Getenv("STOCKINFO_SEARCH_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.SearchLimit = v
		}
	}
	if val := os.Getenv("STOCKINFO_HISTORY_YEARS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.HistoryYears = v
		}
	}
	if val := os.Getenv("STOCKINFO_CORS_ORIGINS"); val != "" {
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.CORSOrigins = origins
		}
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}
	if val := os.Getenv("LOG_FILE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.LogFileEnabled = enabled
		}
	}
	if val := os.Getenv("LOG_DIR"); val != "" {
		c.LogDir = val
	}

	if val := os.Getenv("STOCKINFO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// Validate reports the first setting that would make the client or backend unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	switch c.Provider {
	case ProviderFMP, ProviderYahoo:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderFMP, ProviderYahoo)
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("search limit must be at least 1")
	}
	if c.HistoryYears < 1 {
		return fmt.Errorf("history years must be at least 1")
	}
	return nil
}
