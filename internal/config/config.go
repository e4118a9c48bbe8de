package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const appName = "lazyban"

type Config struct {
	UI       UIConfig       `toml:"ui"`
	Session  SessionConfig  `toml:"session"`
	GeoIP    GeoIPConfig    `toml:"geoip"`
	Advanced AdvancedConfig `toml:"advanced"`
}

type UIConfig struct {
	Theme     string `toml:"theme"`
	SortOrder string `toml:"sort_order"`
}

type SessionConfig struct {
	Backend   string          `toml:"backend"`
	Name      string          `toml:"name"`
	Path      string          `toml:"path"`
	Backup    bool            `toml:"backup"`
	Redis     RedisConfig     `toml:"redis"`
	Firewalld FirewalldConfig `toml:"firewalld"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

type FirewalldConfig struct {
	IPSet     string `toml:"ipset"`
	IPSet6    string `toml:"ipset6"`
	Permanent bool   `toml:"permanent"`
}

type GeoIPConfig struct {
	Database string `toml:"database"`
}

type AdvancedConfig struct {
	LogLevel string `toml:"log_level"`
}

func Default() Config {
	return Config{
		UI: UIConfig{
			Theme:     "default",
			SortOrder: "ascending",
		},
		Session: SessionConfig{
			Backend: "json",
			Name:    "shadow",
			Backup:  true,
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
				Key:  "lazyban:banned_ips",
			},
			Firewalld: FirewalldConfig{
				IPSet:     "lazyban",
				IPSet6:    "lazyban6",
				Permanent: true,
			},
		},
	}
}

// Dir is the directory holding the config file, state and the default
// session files.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

func ResolvePath() (string, error) {
	if env := os.Getenv("LAZYBAN_CONFIG"); env != "" {
		return env, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the first config file that exists. It returns the config, any
// warnings about ignored settings, the path read and whether a file was found.
func Load() (Config, []string, string, bool, error) {
	paths, err := candidatePaths()
	if err != nil {
		return Default(), nil, "", false, err
	}
	for _, path := range paths {
		cfg, warnings, err := LoadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Default(), nil, "", false, err
		}
		return cfg, warnings, path, true, nil
	}
	return Default(), nil, "", false, nil
}

func LoadFile(path string) (Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), nil, err
	}
	cfg := Default()
	warnings, err := parse(data, &cfg)
	if err != nil {
		return Default(), nil, fmt.Errorf("parse %s: %w", path, err)
	}
	warnings = append(warnings, normalizeConfig(&cfg)...)
	return cfg, warnings, nil
}

// parse decodes strictly first so unknown keys can be reported, then falls
// back to a lenient decode that ignores them.
func parse(data []byte, cfg *Config) ([]string, error) {
	strict := *cfg
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(&strict)
	if err == nil {
		*cfg = strict
		return nil, nil
	}

	var missing *toml.StrictMissingError
	if !errors.As(err, &missing) {
		return nil, err
	}
	warnings := make([]string, 0, len(missing.Errors))
	for _, e := range missing.Errors {
		row, _ := e.Position()
		warnings = append(warnings, fmt.Sprintf("line %d: unknown key %q", row, strings.Join(e.Key(), ".")))
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return warnings, nil
}

func normalizeConfig(cfg *Config) []string {
	warnings := make([]string, 0)
	if cfg.UI.Theme != "" && cfg.UI.Theme != "default" {
		warnings = append(warnings, fmt.Sprintf("ui.theme %q is not supported; using default", cfg.UI.Theme))
		cfg.UI.Theme = "default"
	}
	switch strings.ToLower(strings.TrimSpace(cfg.UI.SortOrder)) {
	case "", "ascending", "asc":
		cfg.UI.SortOrder = "ascending"
	case "descending", "desc":
		cfg.UI.SortOrder = "descending"
	default:
		warnings = append(warnings, fmt.Sprintf("ui.sort_order %q is not supported; using ascending", cfg.UI.SortOrder))
		cfg.UI.SortOrder = "ascending"
	}
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "json"
	}
	if strings.TrimSpace(cfg.Session.Name) == "" {
		warnings = append(warnings, "session.name is empty; using \"shadow\"")
		cfg.Session.Name = "shadow"
	}
	return warnings
}

func candidatePaths() ([]string, error) {
	if env := os.Getenv("LAZYBAN_CONFIG"); env != "" {
		return []string{env}, nil
	}
	primary, err := ResolvePath()
	if err != nil {
		return nil, err
	}
	paths := []string{primary}
	if sudoPath, ok := sudoConfigPath(primary); ok {
		paths = append(paths, sudoPath)
	}
	return paths, nil
}

func sudoConfigPath(primary string) (string, bool) {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" {
		return "", false
	}
	if os.Getenv("USER") == sudoUser {
		return "", false
	}
	u, err := user.Lookup(sudoUser)
	if err != nil || u.HomeDir == "" {
		return "", false
	}
	path := filepath.Join(u.HomeDir, ".config", appName, "config.toml")
	if path == primary {
		return "", false
	}
	return path, true
}

// SessionPath returns the configured session file, or the default file for
// file-based backends.
func (c Config) SessionPath() (string, error) {
	if c.Session.Path != "" {
		return c.Session.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	switch c.Session.Backend {
	case "sqlite":
		return filepath.Join(dir, "banlist.db"), nil
	default:
		return filepath.Join(dir, "banlist.json"), nil
	}
}
