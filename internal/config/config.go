// Package config loads the server configuration from defaults, an optional
// YAML file and GOMEMORY_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by Load,
// e.g. GOMEMORY_SERVER_ADDR or GOMEMORY_GAME_REVEAL_DELAY.
const EnvPrefix = "GOMEMORY"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Game   GameConfig   `mapstructure:"game" validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	// Addr to listen on. Empty means an automatically chosen port on localhost.
	Addr string `mapstructure:"addr"`
	// LogVerbosity is the klog -v level.
	LogVerbosity int `mapstructure:"log_verbosity" validate:"gte=0,lte=10"`
}

// GameConfig contains the game engine settings.
type GameConfig struct {
	RevealDelay  time.Duration `mapstructure:"reveal_delay" validate:"gt=0"`
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
	// Catalog replaces the default card faces, if not empty.
	Catalog []CardConfig `mapstructure:"catalog" validate:"omitempty,unique=ID,dive"`
}

// CardConfig is one card face of a configured catalog.
type CardConfig struct {
	ID    int    `mapstructure:"id" validate:"gt=0"`
	Name  string `mapstructure:"name" validate:"required"`
	Image string `mapstructure:"image" validate:"required"`
}

var validate = validator.New()

// Load reads the configuration. If path is empty only defaults and environment
// variables are used. Environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", "")
	v.SetDefault("server.log_verbosity", 0)
	v.SetDefault("game.reveal_delay", game.DefaultRevealDelay)
	v.SetDefault("game.tick_interval", time.Second)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Catalog returns the configured card catalog, or the default one if none is configured.
func (c *Config) Catalog() (*game.Catalog, error) {
	if len(c.Game.Catalog) == 0 {
		return game.DefaultCatalog(), nil
	}
	cards := make([]game.CardDefinition, 0, len(c.Game.Catalog))
	for _, card := range c.Game.Catalog {
		cards = append(cards, game.CardDefinition{
			ID:    game.CardID(card.ID),
			Name:  card.Name,
			Image: card.Image,
		})
	}
	return game.NewCatalog(cards)
}
