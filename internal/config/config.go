// Package config loads the command line tool settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/caarlos0/env/v11"
	"github.com/subosito/gotenv"
)

// DotenvVar names an optional dotenv file loaded before parsing.
const DotenvVar = "EXSAVE_DOTENV"

// Config holds the tool settings.
type Config struct {
	PresetDir    string `env:"EXSAVE_PRESET_DIR" envDefault:"Preset"`
	Suffix       string `env:"EXSAVE_SUFFIX" envDefault:".exsave.xml"`
	PresetSuffix string `env:"EXSAVE_PRESET_SUFFIX" envDefault:".expreset.xml"`
	LogLevel     string `env:"EXSAVE_LOG_LEVEL" envDefault:"info"`
	RuleEngine   string `env:"EXSAVE_RULE_ENGINE" envDefault:"expr"`
}

// Load preloads the dotenv file named by EXSAVE_DOTENV, when set, and parses
// the environment. Variables already set win over the dotenv file.
func Load() (Config, error) {
	if path := os.Getenv(DotenvVar); path != "" {
		if err := gotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("config: load dotenv %s: %w", path, err)
		}
	}
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// Level returns the apex log level, falling back to info.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
