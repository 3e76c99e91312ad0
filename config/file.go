package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileOverrides is the optional on-disk layer consulted beneath the environment (spec §6's
// variables remain authoritative; a file only supplies defaults for anything unset in the
// environment). Pointed to by the CONFIG_FILE environment variable.
type FileOverrides struct {
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	FrontendURL string `yaml:"frontend_url"`

	Scheduler struct {
		CheckIntervalMinutes int    `yaml:"check_interval_minutes"`
		Timezone             string `yaml:"timezone"`
		LeaderLockMode       string `yaml:"leader_lock_mode"`
	} `yaml:"scheduler"`

	SMTP struct {
		Host      string `yaml:"host"`
		Port      int    `yaml:"port"`
		FromEmail string `yaml:"from_email"`
	} `yaml:"smtp"`
}

// LoadFile decodes path into a FileOverrides. A missing path is not an error — it simply
// yields a zero-valued FileOverrides, so callers that never set CONFIG_FILE see no behavior
// change.
func LoadFile(path string) (*FileOverrides, error) {
	if path == "" {
		return &FileOverrides{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &FileOverrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var f FileOverrides
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &f, nil
}
