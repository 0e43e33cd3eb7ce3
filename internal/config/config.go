// Package config resolves qbank settings from flags, QBANK_* environment
// variables, an optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/qbank/internal/browser"
	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/render"
	"github.com/abhisek/qbank/internal/store"
)

// EnvPrefix is prepended to every environment variable: log.level is read
// from QBANK_LOG_LEVEL.
const EnvPrefix = "QBANK"

// Keys.
const (
	KeyDB               = "db"
	KeyLogLevel         = "log.level"
	KeyLogFile          = "log.file"
	KeyBrowserPageSize  = "browser.page_size"
	KeyBrowserDebounce  = "browser.debounce"
	KeyRenderWidth      = "render.width"
	KeyRenderPageHeight = "render.page_height"
	KeyServerAddr       = "server.addr"
	KeyLLMProvider      = "llm.provider"
	KeyLLMTimeout       = "llm.timeout"
)

// Config is the resolved application configuration.
type Config struct {
	DBPath   string
	LogLevel string
	LogFile  string

	Browser browser.Config
	Render  render.Layout

	ServerAddr string

	LLM llm.Config
}

// Options control where Load looks for settings.
type Options struct {
	// File is an explicit config file (yaml, json or toml). Empty means
	// none.
	File string

	// EnvFile is a dotenv file loaded into the process environment before
	// reading QBANK_* variables. A missing file is ignored.
	EnvFile string

	// Flags maps keys to command-line flags; a flag that was set wins over
	// every other source.
	Flags map[string]*pflag.Flag
}

// New returns a viper instance carrying the defaults and environment
// binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyBrowserPageSize, browser.DefaultPageSize)
	v.SetDefault(KeyBrowserDebounce, browser.DefaultDebounce)
	v.SetDefault(KeyRenderWidth, render.DefaultWidth)
	v.SetDefault(KeyRenderPageHeight, render.DefaultPageHeight)
	v.SetDefault(KeyServerAddr, "127.0.0.1:8080")

	def := llm.DefaultConfig()
	v.SetDefault(KeyLLMProvider, def.Provider)
	v.SetDefault(KeyLLMTimeout, def.Timeout)
	for _, name := range llm.Providers {
		v.SetDefault(providerKey(name, "api_key"), "")
		v.SetDefault(providerKey(name, "model"), def.Credentials[name].Model)
		v.SetDefault(providerKey(name, "base_url"), "")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load resolves the configuration. Precedence: flag, environment, config
// file, default.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return nil, fmt.Errorf("config.godotenv(%s): %w", opts.EnvFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config.stat(%s): %w", opts.EnvFile, err)
		}
	}

	v := New()
	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}
	for key, f := range opts.Flags {
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBPath:   v.GetString(KeyDB),
		LogLevel: v.GetString(KeyLogLevel),
		LogFile:  v.GetString(KeyLogFile),
		Browser: browser.Config{
			PageSize: v.GetInt(KeyBrowserPageSize),
			Debounce: v.GetDuration(KeyBrowserDebounce),
		},
		Render: render.Layout{
			Width:      v.GetInt(KeyRenderWidth),
			PageHeight: v.GetInt(KeyRenderPageHeight),
		},
		ServerAddr: v.GetString(KeyServerAddr),
	}

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = p
	} else if err := store.EnsureDir(cfg.DBPath); err != nil {
		return nil, err
	}

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.Browser.PageSize <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %d", KeyBrowserPageSize, cfg.Browser.PageSize)
	}

	cfg.LLM = llm.DefaultConfig()
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(v.GetString(KeyLLMProvider)))
	cfg.LLM.Timeout = v.GetDuration(KeyLLMTimeout)
	for _, name := range llm.Providers {
		cfg.LLM.Credentials[name] = llm.ProviderConfig{
			APIKey:  v.GetString(providerKey(name, "api_key")),
			Model:   v.GetString(providerKey(name, "model")),
			BaseURL: v.GetString(providerKey(name, "base_url")),
		}
	}
	return cfg, nil
}

func providerKey(provider, field string) string {
	return "llm." + provider + "." + field
}
