package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HubURL string
	Token  string
}

func New() *Config {
	return &Config{
		HubURL: viper.GetString("hub_url"),
		Token:  viper.GetString("token"),
	}
}

func (c *Config) Validate() error {
	if c.HubURL == "" {
		return fmt.Errorf("hub URL is required")
	}
	if !strings.HasPrefix(c.HubURL, "http://") && !strings.HasPrefix(c.HubURL, "https://") {
		return fmt.Errorf("invalid hub URL: %s (expected http:// or https://)", c.HubURL)
	}
	return nil
}
