package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-codecollab/pkg/service"
	codesync "github.com/mattsolo1/grove-codecollab/pkg/sync"
)

var (
	cfgFile      string
	RoomOverride string
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "codecollab")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CODECOLLAB")
	viper.AutomaticEnv()

	defaults := codesync.DefaultConfig()
	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "codecollab"))
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("room", "")
	viper.SetDefault("export.format", "zip")
	viper.SetDefault("github.provider", defaults.Provider)
	viper.SetDefault("github.default_branch", defaults.DefaultBranch)
	viper.SetDefault("github.fallback_branch", defaults.FallbackBranch)
	viper.SetDefault("github.remote_base", defaults.RemoteBase)
	viper.SetDefault("github.author_name", "")
	viper.SetDefault("github.author_email", "")
	viper.SetDefault("github.private", false)

	// A missing config file is fine; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

// NewLogger returns the stderr logger at the configured level.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.WarnLevel
		logger.SetLevel(level)
		logger.WithField("log_level", viper.GetString("log_level")).Warn("unknown log level, using warn")
		return logger
	}
	logger.SetLevel(level)
	return logger
}

func InitService(logger logrus.FieldLogger) (*service.Service, error) {
	syncCfg, err := codesync.DecodeConfig(viper.GetStringMap("github"))
	if err != nil {
		return nil, err
	}

	config := &service.Config{
		DataDir:      viper.GetString("data_dir"),
		ExportFormat: viper.GetString("export.format"),
		Sync:         syncCfg,
	}
	svc, err := service.New(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize service: %w", err)
	}
	return svc, nil
}

// Room returns the room named by --room, falling back to the configured
// default.
func Room() (string, error) {
	room := RoomOverride
	if room == "" {
		room = viper.GetString("room")
	}
	if room == "" {
		return "", fmt.Errorf("no room selected: pass --room or set 'room' in the config")
	}
	return room, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/codecollab/config.yaml)")
	cmd.PersistentFlags().StringVarP(&RoomOverride, "room", "R", "", "Room to operate on")
}
