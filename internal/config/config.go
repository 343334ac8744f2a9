package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "PARTYQUOTE_"

type Application struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Log      Log      `koanf:"log"`
	Catalog  Catalog  `koanf:"catalog"`
	Drafts   Drafts   `koanf:"drafts"`
	Payment  Payment  `koanf:"payment"`
}

type Server struct {
	Port           int           `koanf:"port"`
	ReadTimeout    time.Duration `koanf:"readtimeout"`
	WriteTimeout   time.Duration `koanf:"writetimeout"`
	IdleTimeout    time.Duration `koanf:"idletimeout"`
	AllowedOrigins []string      `koanf:"allowedorigins"`
}

type Database struct {
	Path string `koanf:"path"`
}

type Log struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// Catalog.File, when set, replaces the built-in templates.
type Catalog struct {
	File string `koanf:"file"`
}

type Drafts struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweepinterval"`
}

type Payment struct {
	Method string `koanf:"method"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Application {
	return Application{
		Server: Server{
			Port:           8080,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Database: Database{Path: "partyquote.db"},
		Log:      Log{Level: "info"},
		Drafts: Drafts{
			TTL:           24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Payment: Payment{Method: "manual"},
	}
}

// LoadEnv reads a .env file from the working directory, if there is one.
func LoadEnv() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug("no .env file found, using system environment variables")
		return
	}
	log.Info("loaded environment variables from .env")
}

// Load layers defaults, the YAML file at path and PARTYQUOTE_* variables,
// in that order. A missing file is not an error.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Infof("Config file not found at %s, using defaults and environment variables", path)
			} else {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
		} else {
			log.Infof("Loaded configuration from file: %s", path)
		}
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// ConfigureLogging applies the log settings to the standard logrus logger.
func ConfigureLogging(cfg Log) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
