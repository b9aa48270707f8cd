package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Tsinling0525/synapse/errors"
)

// DefaultServer is the API base address used when nothing else is configured.
const DefaultServer = "http://localhost:8080"

// Token sources reported by Resolve.
const (
	TokenFromEnv    = "env"
	TokenFromConfig = "config"
	TokenNone       = "none"
)

// Env is the process environment the CLI reads.
type Env struct {
	Home       string        `env:"SYNAPSE_HOME"`
	ConfigFile string        `env:"SYNAPSE_CONFIG"`
	Token      string        `env:"SYNAPSE_API_AUTH_TOKEN"`
	Server     string        `env:"SYNAPSE_API_SERVER"`
	Timeout    time.Duration `env:"SYNAPSE_API_TIMEOUT" envDefault:"30s"`
	DevPort    int           `env:"SYNAPSE_DEV_PORT" envDefault:"8080"`
}

// LoadEnv parses environ into Env. A nil map reads the process environment.
func LoadEnv(environ map[string]string) (Env, error) {
	var cfg Env
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Env{}, apperrors.Wrap(apperrors.CodeConfig, "parse env", err)
	}
	return cfg, nil
}

// FileConfig is the YAML configuration file.
type FileConfig struct {
	API APIOptions `yaml:"api"`
}

// APIOptions selects one of several named API configurations.
type APIOptions struct {
	Current        string                      `yaml:"current"`
	Configurations map[string]APIConfiguration `yaml:"configurations"`
}

// APIConfiguration is one named API endpoint.
type APIConfiguration struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token"`
}

// LoadFile reads the configuration file at path. A missing file yields an
// empty configuration.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, apperrors.Wrap(apperrors.CodeConfig, "read config "+path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, apperrors.Wrap(apperrors.CodeConfig, "parse config "+path, err)
	}
	return cfg, nil
}

// Current returns the selected API configuration, if any.
func (c FileConfig) Current() (APIConfiguration, bool, error) {
	name := strings.TrimSpace(c.API.Current)
	if name == "" {
		return APIConfiguration{}, false, nil
	}
	api, ok := c.API.Configurations[name]
	if !ok {
		return APIConfiguration{}, false, apperrors.New(apperrors.CodeConfig,
			fmt.Sprintf("api configuration %q not found", name))
	}
	return api, true, nil
}

// Overrides are values given on the command line.
type Overrides struct {
	Server  string
	Timeout time.Duration
}

// Settings are the resolved submission settings.
type Settings struct {
	Server      string
	Token       string
	TokenSource string
	Timeout     time.Duration
}

// Resolve merges flags, environment and the configuration file.
// Server: flag, env, config, default. Token: env, config, none.
func Resolve(e Env, file FileConfig, o Overrides) (Settings, error) {
	api, _, err := file.Current()
	if err != nil {
		return Settings{}, err
	}
	s := Settings{Server: DefaultServer, TokenSource: TokenNone, Timeout: e.Timeout}
	switch {
	case o.Server != "":
		s.Server = o.Server
	case e.Server != "":
		s.Server = e.Server
	case api.Server != "":
		s.Server = api.Server
	}
	switch {
	case strings.TrimSpace(e.Token) != "":
		s.Token, s.TokenSource = strings.TrimSpace(e.Token), TokenFromEnv
	case strings.TrimSpace(api.Token) != "":
		s.Token, s.TokenSource = strings.TrimSpace(api.Token), TokenFromConfig
	}
	if o.Timeout > 0 {
		s.Timeout = o.Timeout
	}
	return s, nil
}

// Load reads env and the configuration file and resolves settings.
func Load(environ map[string]string, o Overrides) (Settings, error) {
	e, err := LoadEnv(environ)
	if err != nil {
		return Settings{}, err
	}
	path, err := ConfigPath(e)
	if err != nil {
		return Settings{}, apperrors.Wrap(apperrors.CodeConfig, "locate config", err)
	}
	file, err := LoadFile(path)
	if err != nil {
		return Settings{}, err
	}
	return Resolve(e, file, o)
}
