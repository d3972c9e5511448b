package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "GRIDEDIT_CONFIG"

// GetConfigPath returns $GRIDEDIT_CONFIG when set and non-empty, otherwise
// ~/.gridedit/config.
func GetConfigPath() (string, error) {
	if p, ok := os.LookupEnv(EnvConfigPath); ok && p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".gridedit", "config"), nil
}
