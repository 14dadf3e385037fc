package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"ghplayer/internal/api"
	"ghplayer/internal/config"
	"ghplayer/internal/credentials"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// apiClient builds a client for the configured daemon. loggedIn is the raw
// --logged-in flag: empty sends no override.
func (c *commandContext) apiClient(loggedIn string) (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var opts []api.ClientOption
	if value := strings.TrimSpace(loggedIn); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("--logged-in must be true or false, got %q", loggedIn)
		}
		opts = append(opts, api.WithLoggedInOverride(parsed))
	}
	return api.NewClient(cfg, opts...)
}

// withCredentials opens the credential store for the duration of fn.
func (c *commandContext) withCredentials(fn func(*config.Config, *credentials.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := credentials.Open(cfg.CredentialsPath())
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer store.Close()
	return fn(cfg, store)
}

func wrapAPIError(err error, cfg *config.Config) error {
	if err == nil {
		return nil
	}
	bind := ""
	if cfg != nil {
		bind = cfg.Paths.APIBind
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: %s refused the connection; start it with `ghplayer serve`", bind)
	case api.StatusCode(err) == 401:
		return fmt.Errorf("daemon rejected the request: set api_token (or GHPLAYER_API_TOKEN) to match the daemon")
	default:
		return err
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
