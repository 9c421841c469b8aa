// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/oauthlogin/config"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "oauthlogin",
		Short: "OAuth2 login flow server",
		Long: `oauthlogin sends users to an identity provider, exchanges the
authorization code it gets back for an access token and hands the token to
the configured token handlers.

Configuration is read from a YAML file and OAUTHLOGIN_* environment variables.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "oauthlogin.yaml", "path of the configuration file")
	cmd.AddCommand(newServeCmd(flags), newCheckCmd(flags))
	return cmd
}

// loadConfig loads and validates the configuration.
func loadConfig(flags *rootFlags, logger hclog.Logger) (*config.Config, error) {
	c, err := config.Load(flags.configPath, config.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func newLogger(c *config.Config, out io.Writer) hclog.Logger {
	level := hclog.LevelFromString(c.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "oauthlogin",
		Level:      level,
		JSONFormat: c.LogJSON,
		Output:     out,
	})
}

func newCheckCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig(flags, hclog.NewNullLogger())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "base url: %s\n", c.BaseURL)
			for _, p := range c.Providers {
				kind := "oauth2"
				if p.Issuer != "" {
					kind = "oidc"
				}
				fmt.Fprintf(out, "provider %s (%s)\n", p.Name, kind)
			}
			for _, d := range c.Descriptors() {
				priority := "-"
				if d.Priority != nil {
					priority = fmt.Sprint(*d.Priority)
				}
				fmt.Fprintf(out, "handler %s context=%s priority=%s\n", d.Kind, d.Context, priority)
			}
			return nil
		},
	}
}
