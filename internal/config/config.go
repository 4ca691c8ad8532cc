package config

import (
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

const envPrefix = "PRODPLAN_"

type Application struct {
	Server   Server   `koanf:"server"`
	Log      Log      `koanf:"log"`
	Database Database `koanf:"db"`
	Planning Planning `koanf:"planning"`
}

type Server struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"readtimeout"`
	WriteTimeout time.Duration `koanf:"writetimeout"`
	IdleTimeout  time.Duration `koanf:"idletimeout"`
}

type Log struct {
	Level string `koanf:"level"`
	// File enables a rotating log file next to stderr output when set.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"maxsizemb"`
	MaxBackups int    `koanf:"maxbackups"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Planning struct {
	ShiftDurationHours float64 `koanf:"shiftdurationhours"`
	HorizonDays        int     `koanf:"horizondays"`
	OvertimeEvery      int     `koanf:"overtimeevery"`
	OvertimeLeadDays   int     `koanf:"overtimeleaddays"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Addr:         ":8181",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  16,
			MaxBackups: 8,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "prodplan",
			Pass:   "",
			Name:   "prodplan",
			Schema: "prodplan",
		},
		Planning: Planning{
			ShiftDurationHours: 7,
			HorizonDays:        30,
			OvertimeEvery:      3,
			OvertimeLeadDays:   2,
		},
	}
}

// Load reads the configuration from struct defaults, then the YAML file at path, then
// PRODPLAN_* environment variables. A .env file in the working directory feeds the environment.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded environment from .env")
	}

	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
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
