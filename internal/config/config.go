package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvAPIBase = "SWAP_API_BASE"
	EnvRPCURL  = "SWAP_RPC_URL"
	EnvVerbose = "SWAP_VERBOSE"
)

// GlobalFlags are the raw root-command flag values before merging with
// the config file and environment.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Timeout    string
	Retries    int
	RPCURL     string
	NoCache    bool
}

type Settings struct {
	APIBaseURL    string
	Timeout       time.Duration
	Retries       int
	Verbose       bool
	RPCURL        string
	CacheEnabled  bool
	CachePath     string
	CacheLockPath string
	StorePath     string
	StoreLockPath string
}

type fileConfig struct {
	APIBase     string `yaml:"api_base"`
	Timeout     string `yaml:"timeout"`
	Retries     *int   `yaml:"retries"`
	Diagnostics string `yaml:"diagnostics"`
	RPCURL      string `yaml:"rpc_url"`
	Cache       struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"cache"`
}

// Load merges defaults, the yaml config file, environment variables and
// flags, in increasing precedence.
func Load(flags GlobalFlags) (Settings, error) {
	settings := Settings{
		Timeout:      10 * time.Second,
		Retries:      2,
		CacheEnabled: true,
	}

	path := flags.ConfigPath
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(configDir(), "config.yaml")
	}
	var fc fileConfig
	buf, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(buf, &fc); err != nil {
			return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No config file is fine; defaults apply.
	default:
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if strings.TrimSpace(fc.APIBase) != "" {
		settings.APIBaseURL = strings.TrimSpace(fc.APIBase)
	}
	if strings.TrimSpace(fc.Timeout) != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return Settings{}, fmt.Errorf("parse config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if fc.Retries != nil {
		settings.Retries = *fc.Retries
	}
	if strings.EqualFold(strings.TrimSpace(fc.Diagnostics), "verbose") {
		settings.Verbose = true
	}
	if strings.TrimSpace(fc.RPCURL) != "" {
		settings.RPCURL = strings.TrimSpace(fc.RPCURL)
	}
	if fc.Cache.Enabled != nil {
		settings.CacheEnabled = *fc.Cache.Enabled
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		settings.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRPCURL)); v != "" {
		settings.RPCURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVerbose)); v == "1" || strings.EqualFold(v, "true") {
		settings.Verbose = true
	}

	if strings.TrimSpace(flags.Timeout) != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return Settings{}, fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Retries >= 0 {
		settings.Retries = flags.Retries
	}
	if flags.Verbose {
		settings.Verbose = true
	}
	if strings.TrimSpace(flags.RPCURL) != "" {
		settings.RPCURL = strings.TrimSpace(flags.RPCURL)
	}
	if flags.NoCache {
		settings.CacheEnabled = false
	}

	dataDir := dataDir()
	settings.CachePath = filepath.Join(dataDir, "catalog.db")
	settings.CacheLockPath = filepath.Join(dataDir, "catalog.lock")
	settings.StorePath = filepath.Join(dataDir, "settlements.db")
	settings.StoreLockPath = filepath.Join(dataDir, "settlements.lock")
	return settings, nil
}

func configDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "swap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "swap")
}

func dataDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "swap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "swap")
}
