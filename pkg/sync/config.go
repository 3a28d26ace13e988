package sync

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config holds the push settings read from the `github` section of the
// configuration file.
type Config struct {
	Provider       string `mapstructure:"provider"`
	DefaultBranch  string `mapstructure:"default_branch"`
	FallbackBranch string `mapstructure:"fallback_branch"`
	AuthorName     string `mapstructure:"author_name"`
	AuthorEmail    string `mapstructure:"author_email"`
	RemoteBase     string `mapstructure:"remote_base"`
	Private        bool   `mapstructure:"private"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Provider:       "github",
		DefaultBranch:  "main",
		FallbackBranch: "master",
		RemoteBase:     "https://github.com",
	}
}

// DecodeConfig decodes a raw configuration section over the defaults.
func DecodeConfig(raw map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()
	if len(raw) == 0 {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return cfg, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("failed to decode push config: %w", err)
	}

	if cfg.Provider == "" {
		return cfg, fmt.Errorf("push config missing 'provider' field")
	}
	if cfg.DefaultBranch == "" {
		cfg.DefaultBranch = "main"
	}
	return cfg, nil
}
