// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package config loads the configuration of an oauthlogin server from a YAML
// file, with overrides from OAUTHLOGIN_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/oauthlogin/flow"
	"github.com/hashicorp/oauthlogin/handler"
	"github.com/hashicorp/oauthlogin/session"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix prefixes every environment variable read.
	EnvPrefix = "OAUTHLOGIN_"

	DefaultListen   = ":8080"
	DefaultLogLevel = "info"
)

// Config is the configuration of an oauthlogin server.
type Config struct {
	Server  `yaml:",inline"`
	Session Session `yaml:"session"`

	Providers []Provider           `yaml:"providers"`
	Handlers  []handler.Descriptor `yaml:"handlers"`
}

// Server holds the top level settings. Each can be overridden with an
// OAUTHLOGIN_ variable.
type Server struct {
	Listen   string `yaml:"listen" env:"LISTEN"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
	Segment  string `yaml:"segment" env:"SEGMENT"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"LOG_JSON"`
}

// Session configures the in-memory session store. Each setting can be
// overridden with an OAUTHLOGIN_SESSION_ variable.
type Session struct {
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
	CookieName    string        `yaml:"cookie_name" env:"COOKIE_NAME"`
	SecureCookie  bool          `yaml:"secure_cookie" env:"SECURE_COOKIE"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
}

// Provider configures one identity provider. A provider with an Issuer uses
// OIDC discovery, otherwise AuthURL and TokenURL are required.
type Provider struct {
	Name                 string   `yaml:"name"`
	ClientID             string   `yaml:"client_id"`
	ClientSecret         string   `yaml:"client_secret"`
	RedirectURL          string   `yaml:"redirect_url"`
	Scopes               []string `yaml:"scopes"`
	Issuer               string   `yaml:"issuer"`
	AuthURL              string   `yaml:"auth_url"`
	TokenURL             string   `yaml:"token_url"`
	Audiences            []string `yaml:"audiences"`
	SigningAlgs          []string `yaml:"signing_algs"`
	ResponseMode         string   `yaml:"response_mode"`
	ProviderCA           string   `yaml:"provider_ca"`
	ClientSecretInParams bool     `yaml:"client_secret_in_params"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Listen:   DefaultListen,
			Segment:  flow.DefaultSegment,
			LogLevel: DefaultLogLevel,
		},
		Session: Session{
			TTL:           session.DefaultTTL,
			CookieName:    session.DefaultCookieName,
			SweepInterval: time.Minute,
		},
	}
}

// Load reads the configuration file at path over the defaults, then
// applies environment overrides. A missing file, or an empty path, leaves
// the defaults in place. The result is not validated.
//
// Supported options: WithEnvironment, WithLogger
func Load(path string, opt ...Option) (*Config, error) {
	const op = "config.Load"
	opts := getConfigOpts(opt...)
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			opts.withLogger.Info("no configuration file found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("%s: unable to read %s: %w", op, path, err)
		default:
			if err := decode(data, c); err != nil {
				return nil, fmt.Errorf("%s: unable to parse %s: %w", op, path, err)
			}
			opts.withLogger.Debug("loaded configuration", "path", path)
		}
	}
	if err := applyEnv(c, opts.withEnvironment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func decode(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides c with OAUTHLOGIN_* variables. Variables which aren't
// set leave the loaded value alone. Provider secrets are read from
// OAUTHLOGIN_PROVIDER_<NAME>_CLIENT_SECRET, with the provider name upper
// cased and dashes replaced by underscores.
func applyEnv(c *Config, environ map[string]string) error {
	const op = "config.applyEnv"
	if err := env.ParseWithOptions(&c.Server, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := env.ParseWithOptions(&c.Session, env.Options{
		Prefix:      EnvPrefix + "SESSION_",
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("%s: session: %w", op, err)
	}
	for i := range c.Providers {
		if v, ok := environ[ProviderSecretEnv(c.Providers[i].Name)]; ok && v != "" {
			c.Providers[i].ClientSecret = v
		}
	}
	return nil
}

// ProviderSecretEnv is the environment variable overriding the named
// provider's client secret.
func ProviderSecretEnv(name string) string {
	return EnvPrefix + "PROVIDER_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_CLIENT_SECRET"
}

// Validate the configuration, reporting every problem found.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	var result *multierror.Error
	if c.BaseURL == "" {
		result = multierror.Append(result, fmt.Errorf("base_url is required: %w", ErrInvalidConfig))
	} else if _, err := flow.SameSite(c.BaseURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("base_url: %w", err))
	}
	if c.Session.TTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("session.ttl must be positive: %w", ErrInvalidConfig))
	}
	if len(c.Providers) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one provider is required: %w", ErrInvalidConfig))
	}
	seen := map[string]bool{}
	for i, p := range c.Providers {
		switch {
		case p.Name == "":
			result = multierror.Append(result, fmt.Errorf("providers[%d]: name is required: %w", i, ErrInvalidConfig))
			continue
		case seen[p.Name]:
			result = multierror.Append(result, fmt.Errorf("providers[%d]: duplicate name %q: %w", i, p.Name, ErrInvalidConfig))
			continue
		}
		seen[p.Name] = true
		if err := p.providerConfig().Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("provider %q: %w", p.Name, err))
		}
	}
	for i, d := range c.Handlers {
		if d.Kind == "" {
			result = multierror.Append(result, fmt.Errorf("handlers[%d]: kind is required: %w", i, ErrInvalidConfig))
		}
		if d.Context == "" {
			result = multierror.Append(result, fmt.Errorf("handlers[%d]: context is required, use %q for every context: %w", i, handler.GlobalContext, ErrInvalidConfig))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
