package model

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultLatency is the artificial delay applied before every note operation
// when the configuration does not set one.
const DefaultLatency = 500 * time.Millisecond

// DefaultAccessCodeURL is the upstream the access-code endpoint proxies.
const DefaultAccessCodeURL = "https://www.opsglitch.com/api/v1/contest-submission/3"

type Config struct {
	Mode         string
	Port         int
	BaseURL      string // external base URL, used for the OAuth redirect
	CookieSecret string

	GoogleClientID     string
	GoogleClientSecret string
	// Optional endpoint overrides, empty means Google's production endpoints.
	GoogleAuthURL     string
	GoogleTokenURL    string
	GoogleUserInfoURL string

	AccessCodeURL string
	AccessPolicy  string // "reserved" (default) or "session"
	Latency       string // duration, e.g. "500ms"; "0s" disables the delay

	Servers map[string]server
}

type server struct {
	Database   string // "memory" | "sqlite3" | "postgresql" | "mongodb"
	DBName     string
	DBUser     string
	DBPassword string
	DBHost     string
	DBLogger   string
}

// LoadConfig reads a TOML configuration file and applies environment
// overrides. A missing file is not an error; the configuration is then taken
// from the environment alone.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overwrites configuration values with the matching environment
// variables when those are set.
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.GoogleClientSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.CookieSecret = v
	}
	if v := os.Getenv("MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
}

// Validate reports every required setting that is missing. The server must
// not start without OAuth credentials and a session secret.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.GoogleClientID == "" {
		errs = append(errs, errors.New("missing GoogleClientID (GOOGLE_CLIENT_ID)"))
	}
	if cfg.GoogleClientSecret == "" {
		errs = append(errs, errors.New("missing GoogleClientSecret (GOOGLE_CLIENT_SECRET)"))
	}
	if cfg.CookieSecret == "" {
		errs = append(errs, errors.New("missing CookieSecret (SESSION_SECRET)"))
	}
	if _, err := cfg.LatencyDuration(); err != nil {
		errs = append(errs, err)
	}
	switch AccessPolicy(cfg.AccessPolicy) {
	case "", PolicyReserved, PolicySession:
	default:
		errs = append(errs, fmt.Errorf("unknown AccessPolicy %q", cfg.AccessPolicy))
	}
	return errors.Join(errs...)
}

// LatencyDuration returns the configured artificial delay.
func (cfg *Config) LatencyDuration() (time.Duration, error) {
	if cfg.Latency == "" {
		return DefaultLatency, nil
	}
	d, err := time.ParseDuration(cfg.Latency)
	if err != nil {
		return 0, fmt.Errorf("invalid Latency %q: %w", cfg.Latency, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid Latency %q: negative", cfg.Latency)
	}
	return d, nil
}

// Policy returns the access policy used by the notes view.
func (cfg *Config) Policy() AccessPolicy {
	if cfg.AccessPolicy == "" {
		return PolicyReserved
	}
	return AccessPolicy(cfg.AccessPolicy)
}

// UpstreamAccessCodeURL returns the proxied access-code endpoint.
func (cfg *Config) UpstreamAccessCodeURL() string {
	if cfg.AccessCodeURL == "" {
		return DefaultAccessCodeURL
	}
	return cfg.AccessCodeURL
}

func (cfg *Config) server() server {
	return cfg.Servers[cfg.Mode]
}
