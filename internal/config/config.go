package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr         string `yaml:"http_addr"`
	BybitAPIKey      string `yaml:"bybit_api_key"`
	BybitAPISecret   string `yaml:"bybit_api_secret"`
	BybitTestnet     bool   `yaml:"bybit_testnet"`
	BybitBaseURL     string `yaml:"bybit_base_url"`
	ExchangeDisabled bool   `yaml:"exchange_disabled"`
	WebhookTokenHash string `yaml:"webhook_token_hash"`
	LogLevel         string `yaml:"log_level"`
	LogPretty        bool   `yaml:"log_pretty"`
	LogFile          string `yaml:"log_file"`
}

// Load reads the optional YAML file named by CONFIG_FILE and then applies
// environment overrides. API credentials are required unless the exchange
// is explicitly disabled.
func Load() (Config, error) {
	c := Config{HTTPAddr: ":8080", LogLevel: "info"}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &c); err != nil {
			return c, err
		}
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("BYBIT_API_KEY"); v != "" {
		c.BybitAPIKey = v
	}
	if v := os.Getenv("BYBIT_API_SECRET"); v != "" {
		c.BybitAPISecret = v
	}
	if v := os.Getenv("BYBIT_BASE_URL"); v != "" {
		c.BybitBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("WEBHOOK_TOKEN_HASH"); v != "" {
		c.WebhookTokenHash = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.LogFile = v
	}
	for key, dst := range map[string]*bool{
		"BYBIT_TESTNET":  &c.BybitTestnet,
		"BYBIT_DISABLED": &c.ExchangeDisabled,
		"LOG_PRETTY":     &c.LogPretty,
	} {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
	}

	var missing []string
	if !c.ExchangeDisabled {
		if c.BybitAPIKey == "" {
			missing = append(missing, "BYBIT_API_KEY")
		}
		if c.BybitAPISecret == "" {
			missing = append(missing, "BYBIT_API_SECRET")
		}
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}

func loadFile(path string, c *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}
