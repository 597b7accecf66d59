package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rpggio/syncus/internal/domain/party"
)

// Config defines server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Transport  TransportConfig  `yaml:"transport"`
	Store      StoreConfig      `yaml:"store"`
	Changefeed ChangefeedConfig `yaml:"changefeed"`
	Crypto     CryptoConfig     `yaml:"crypto"`
	Party      PartyConfig      `yaml:"party"`
	Auth       AuthConfig       `yaml:"auth"`
	Lookup     LookupConfig     `yaml:"lookup"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // stdio or http
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

type ChangefeedConfig struct {
	Driver   string `yaml:"driver"` // memory or redis
	RedisURL string `yaml:"redis_url"`
}

type CryptoConfig struct {
	Secret string `yaml:"secret"`
}

// PartyConfig fixes the two party ids. Role selects the party served in
// stdio mode.
type PartyConfig struct {
	Role      string `yaml:"role"`
	PrimaryID string `yaml:"primary_id"`
	PartnerID string `yaml:"partner_id"`
}

// Directory returns the configured party directory.
func (p PartyConfig) Directory() party.Directory {
	return party.Directory{PrimaryID: p.PrimaryID, PartnerID: p.PartnerID}
}

type AuthConfig struct {
	Enabled bool        `yaml:"enabled"`
	Keys    []KeyConfig `yaml:"keys"`
}

// KeyConfig maps the sha256 hex of a bearer token to a party role.
type KeyConfig struct {
	Hash string `yaml:"hash"`
	Role string `yaml:"role"`
}

type LookupConfig struct {
	LinkPreviewURL string        `yaml:"link_preview_url"`
	LinkPreviewKey string        `yaml:"link_preview_key"`
	MediaURL       string        `yaml:"media_url"`
	MediaKey       string        `yaml:"media_key"`
	Timeout        time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "syncus.db",
		},
		Changefeed: ChangefeedConfig{
			Driver: "memory",
		},
		Party: PartyConfig{
			Role: string(party.RolePrimary),
		},
		Lookup: LookupConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SYNCUS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"SYNCUS_SERVER_HOST":          &cfg.Server.Host,
		"SYNCUS_TRANSPORT":            &cfg.Transport.Mode,
		"SYNCUS_STORE_DRIVER":         &cfg.Store.Driver,
		"SYNCUS_STORE_DSN":            &cfg.Store.DSN,
		"SYNCUS_CHANGEFEED_DRIVER":    &cfg.Changefeed.Driver,
		"SYNCUS_REDIS_URL":            &cfg.Changefeed.RedisURL,
		"SYNCUS_SECRET":               &cfg.Crypto.Secret,
		"SYNCUS_ROLE":                 &cfg.Party.Role,
		"SYNCUS_PRIMARY_ID":           &cfg.Party.PrimaryID,
		"SYNCUS_PARTNER_ID":           &cfg.Party.PartnerID,
		"SYNCUS_LINK_PREVIEW_URL":     &cfg.Lookup.LinkPreviewURL,
		"SYNCUS_LINK_PREVIEW_API_KEY": &cfg.Lookup.LinkPreviewKey,
		"SYNCUS_MEDIA_URL":            &cfg.Lookup.MediaURL,
		"SYNCUS_MEDIA_API_KEY":        &cfg.Lookup.MediaKey,
		"SYNCUS_LOG_LEVEL":            &cfg.Log.Level,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if portStr := os.Getenv("SYNCUS_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SYNCUS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("SYNCUS_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SYNCUS_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if v := os.Getenv("SYNCUS_LOOKUP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SYNCUS_LOOKUP_TIMEOUT: %w", err)
		}
		cfg.Lookup.Timeout = d
	}
	return nil
}

// Validate rejects unknown drivers, modes and roles. A missing secret is
// allowed; encrypted writes fail at call time instead.
func (c Config) Validate() error {
	var errs []error
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		errs = append(errs, fmt.Errorf("transport.mode: unknown mode %q", c.Transport.Mode))
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if strings.TrimSpace(c.Store.DSN) == "" {
		errs = append(errs, errors.New("store.dsn: required"))
	}
	switch c.Changefeed.Driver {
	case "memory":
	case "redis":
		if c.Changefeed.RedisURL == "" {
			errs = append(errs, errors.New("changefeed.redis_url: required for redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("changefeed.driver: unknown driver %q", c.Changefeed.Driver))
	}
	if _, err := party.ParseRole(c.Party.Role); err != nil {
		errs = append(errs, fmt.Errorf("party.role: %w", err))
	}
	if _, err := party.Resolve(party.RolePrimary, c.Party.Directory()); err != nil {
		errs = append(errs, fmt.Errorf("party: %w", err))
	}
	for i, k := range c.Auth.Keys {
		if _, err := party.ParseRole(k.Role); err != nil {
			errs = append(errs, fmt.Errorf("auth.keys[%d].role: %w", i, err))
		}
		if k.Hash == "" {
			errs = append(errs, fmt.Errorf("auth.keys[%d].hash: required", i))
		}
	}
	if c.Transport.Mode == "http" && c.Auth.Enabled && len(c.Auth.Keys) == 0 {
		errs = append(errs, errors.New("auth.keys: at least one key required when auth is enabled"))
	}
	return errors.Join(errs...)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
