package infra

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the CLI configuration file inside the home
// directory.
const ConfigFileName = "config.yaml"

// HomeDir returns the CLI home directory. Defaults to ~/.synapse.
func HomeDir(env Env) (string, error) {
	if env.Home != "" {
		return env.Home, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".synapse"), nil
}

// ConfigPath returns the configuration file location: SYNAPSE_CONFIG when
// set, else config.yaml under the home directory.
func ConfigPath(env Env) (string, error) {
	if env.ConfigFile != "" {
		return env.ConfigFile, nil
	}
	home, err := HomeDir(env)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}
