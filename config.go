package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"motord/command"
	"motord/dac"
	"motord/indicator"
	"motord/motor"
	"motord/mqtt"
	"motord/pin"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MOTORD_"

// Config is the main configuration structure for motord.
type Config struct {
	// General settings
	ClientID string `yaml:"client_id" env:"CLIENT_ID"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Motor wiring and command mapping
	Motor motor.Config `yaml:"motor"`

	// Enable line backend
	Pins pin.Config `yaml:"pins"`

	// Magnitude output
	DAC dac.Config `yaml:"dac" envPrefix:"DAC_"`

	// Local command sources
	Commands command.Config `yaml:"commands"`

	// Indicator configuration
	Indicator indicator.Config `yaml:"indicator"`

	// MQTT connection settings
	MQTT mqtt.Config `yaml:"mqtt" envPrefix:"MQTT_"`

	// Safety settings
	Safety SafetyConfig `yaml:"safety"`
}

// SafetyConfig holds the dead-man settings.
type SafetyConfig struct {
	// DeadmanSecs stops a running motor when no command arrives for this
	// long. Zero disables the timer.
	DeadmanSecs int `yaml:"deadman_secs"`
}

// LoadConfig reads the YAML file at path, then applies MOTORD_* overrides
// from the environment and from envFile, if it exists.
func LoadConfig(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	cfg.Motor = cfg.Motor.WithDefaults()
	cfg.DAC = cfg.DAC.WithDefaults()
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first problem with c.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client_id missing", motor.ErrInvalidConfig)
	}
	if err := c.Motor.Validate(); err != nil {
		return err
	}
	if err := c.DAC.Validate(); err != nil {
		return fmt.Errorf("%w: %w", motor.ErrInvalidConfig, err)
	}
	if c.Safety.DeadmanSecs < 0 {
		return fmt.Errorf("%w: deadman_secs must not be negative", motor.ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", motor.ErrInvalidConfig, err)
	}
	return nil
}

// DryRun switches every hardware backend to its simulation.
func (c *Config) DryRun() {
	c.Pins.Type = "sim"
	c.DAC.Type = "sim"
	c.Indicator.GreenPin = nil
	c.Indicator.YellowPin = nil
	c.Indicator.RedPin = nil
}
