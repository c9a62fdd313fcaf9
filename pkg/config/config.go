// Package config charge la configuration du tableau de bord KPI depuis un fichier
// YAML, les valeurs par défaut des structures et les variables KPI_*.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"kpi-dashboard/pkg/cache"
)

// EnvPrefix préfixe les variables d'environnement (KPI_DSN, KPI_REDIS_ADDRESS, ...).
const EnvPrefix = "KPI"

var ErrAmbiguousSource = errors.New("source: csv and dsn are mutually exclusive")

// SourceKind désigne l'origine des ventes chargées au démarrage.
type SourceKind string

const (
	SourceCSV    SourceKind = "csv"
	SourceMySQL  SourceKind = "mysql"
	SourceSample SourceKind = "sample"
)

// Config est la configuration complète de l'application.
type Config struct {
	Logging string       `yaml:"logging" default:"info" validate:"oneof=panic fatal error warn info debug trace"`
	Dataset string       `yaml:"dataset" default:"sales" validate:"required"`
	Source  SourceConfig `yaml:"source"`
	Redis   cache.Config `yaml:"redis"`
	Server  ServerConfig `yaml:"server"`
}

// SourceConfig sélectionne le fichier CSV, la base MySQL/MariaDB ou le jeu de démonstration.
type SourceConfig struct {
	CSV        string `yaml:"csv"`
	DSN        string `yaml:"dsn"`
	Table      string `yaml:"table" default:"sales" validate:"required"`
	SampleSize int    `yaml:"sample_size" default:"10000" validate:"gt=0"`
	SampleSeed int64  `yaml:"sample_seed" default:"42"`
	Progress   bool   `yaml:"progress" default:"true"`
}

// ServerConfig contient la configuration du serveur HTTP.
type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// envOverrides liste les variables KPI_*; une valeur vide laisse le réglage du fichier intact.
type envOverrides struct {
	Logging      string `envconfig:"LOG_LEVEL"`
	Dataset      string `envconfig:"DATASET"`
	CSV          string `envconfig:"CSV"`
	DSN          string `envconfig:"DSN"`
	Table        string `envconfig:"TABLE"`
	RedisAddress string `envconfig:"REDIS_ADDRESS"`
	Addr         string `envconfig:"ADDR"`
}

// Load applique les valeurs par défaut, puis le fichier YAML (un fichier absent
// n'est pas une erreur), puis les variables KPI_*, et valide le résultat.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	cfg.applyEnv(env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env envOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Logging, env.Logging)
	set(&c.Dataset, env.Dataset)
	set(&c.Source.CSV, env.CSV)
	set(&c.Source.DSN, env.DSN)
	set(&c.Source.Table, env.Table)
	set(&c.Redis.Address, env.RedisAddress)
	set(&c.Server.Addr, env.Addr)
}

// Validate vérifie la configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Source.CSV != "" && c.Source.DSN != "" {
		return ErrAmbiguousSource
	}
	return nil
}

// Kind renvoie la source effective; sans CSV ni DSN, le jeu de démonstration.
func (s SourceConfig) Kind() SourceKind {
	switch {
	case s.CSV != "":
		return SourceCSV
	case s.DSN != "":
		return SourceMySQL
	}
	return SourceSample
}

// CacheEnabled indique si une adresse Redis est configurée.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Address != ""
}
