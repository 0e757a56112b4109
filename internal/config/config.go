// Package config reads settings from SAMPARK_* environment variables, an
// optional .env file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SAMPARK_PORT.
const EnvPrefix = "SAMPARK"

type Config struct {
	APIURL          string
	Session         string
	Des             string
	Port            int
	DataDir         string
	PageSize        int
	SnapshotTTL     time.Duration
	SessionTTL      time.Duration
	StateName       string
	AnthropicAPIKey string
	AllowedOrigins  []string
	Demo            bool
}

// New returns a viper instance with defaults and environment bindings set.
// dotEnvPath is loaded first when it exists; pass "" to skip it.
func New(dotEnvPath string) (*viper.Viper, error) {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("api_url", "")
	v.SetDefault("session", "2025-2026")
	v.SetDefault("des", "111")
	v.SetDefault("port", 3000)
	v.SetDefault("data_dir", "tmpdata")
	v.SetDefault("page_size", 25)
	v.SetDefault("snapshot_ttl", time.Hour)
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("state_name", "Chattisgarh")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("demo", false)

	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", dotEnvPath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// The web dashboard's variable names are honoured too.
	_ = v.BindEnv("api_url", EnvPrefix+"_API_URL", "NEXT_PUBLIC_SAMPARK_API_URL")
	_ = v.BindEnv("anthropic_api_key", EnvPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	return v, nil
}

// FromViper reads and checks the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		APIURL:          strings.TrimSpace(v.GetString("api_url")),
		Session:         v.GetString("session"),
		Des:             v.GetString("des"),
		Port:            v.GetInt("port"),
		DataDir:         v.GetString("data_dir"),
		PageSize:        v.GetInt("page_size"),
		SnapshotTTL:     v.GetDuration("snapshot_ttl"),
		SessionTTL:      v.GetDuration("session_ttl"),
		StateName:       v.GetString("state_name"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		AllowedOrigins:  splitList(v.GetString("allowed_origins")),
		Demo:            v.GetBool("demo"),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load is New followed by FromViper.
func Load(dotEnvPath string) (*Config, error) {
	v, err := New(dotEnvPath)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func (c *Config) validate() error {
	var errs []error
	if c.APIURL != "" {
		if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("api_url must be an absolute URL, got %q", c.APIURL))
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session_ttl must be positive"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	return errors.Join(errs...)
}

// Remote reports whether a real API is configured. Without one, and without
// demo mode, dataset commands cannot run.
func (c *Config) Remote() bool { return c.APIURL != "" && !c.Demo }

// SessionFile is where the CLI keeps the logged-in session.
func (c *Config) SessionFile() string { return filepath.Join(c.DataDir, "session.json") }

// LogFile is where the JSON log goes.
func (c *Config) LogFile() string { return filepath.Join(c.DataDir, "err.log") }

// ExportDir is the default directory for CSV exports.
func (c *Config) ExportDir() string { return filepath.Join(c.DataDir, "exports") }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
