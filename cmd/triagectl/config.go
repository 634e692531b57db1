package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/linnemanlabs/triageboard/internal/client"
	"github.com/linnemanlabs/triageboard/internal/dashboard"
)

const envPrefix = "TRIAGECTL"

// Config is the resolved command configuration. Precedence: flags, then
// TRIAGECTL_* environment, then the optional config file, then defaults.
type Config struct {
	Server   string        `mapstructure:"server"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Interval time.Duration `mapstructure:"interval"`
	LogFile  string        `mapstructure:"log-file"`
	LogLevel string        `mapstructure:"log-level"`
}

func registerGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("server", "http://localhost:8080", "triageboard server base URL")
	pf.Duration("timeout", 10*time.Second, "per-request timeout")
	pf.Duration("interval", dashboard.DefaultInterval, "dashboard poll interval")
	pf.String("log-file", "", "write logs to this file (dashboard logs are discarded without it)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("config", "", "optional config file (yaml, json, toml or env)")
}

func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Server); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid server %q (want http(s)://host[:port])", c.Server))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid timeout %s (must be > 0)", c.Timeout))
	}
	if c.Interval < 500*time.Millisecond {
		errs = append(errs, fmt.Errorf("invalid interval %s (must be >= 500ms)", c.Interval))
	}
	return errors.Join(errs...)
}

func (c *Config) newClient() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL:        c.Server,
		RequestTimeout: c.Timeout,
	})
}
