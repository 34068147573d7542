package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "PORTAL_"

type Application struct {
	Server   Server   `koanf:"server"`
	Backend  Backend  `koanf:"backend"`
	Claim    Claim    `koanf:"claim"`
	Database Database `koanf:"db"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

// Backend is the REST service that stores programmes and claims.
type Backend struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
}

type Claim struct {
	RefetchDelay time.Duration `koanf:"refetchdelay"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Defaults() Application {
	return Application{
		Server: Server{Addr: ":8181"},
		Backend: Backend{
			BaseURL: "http://localhost:5000/api",
			Timeout: 30 * time.Second,
		},
		Claim: Claim{RefetchDelay: time.Second},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "eventportal",
			Name:   "eventportal",
			Schema: "eventportal",
		},
	}
}

// Load layers defaults, the optional YAML file at path and PORTAL_* environment variables,
// e.g. PORTAL_BACKEND_BASEURL or PORTAL_CLAIM_REFETCHDELAY=2s.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
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

	err := k.Load(env.Provider(".", env.Opt{
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
	app.Backend.BaseURL = strings.TrimRight(app.Backend.BaseURL, "/")

	return app, nil
}
