package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// DatabaseOptions are client credentials from a MySQL option file.
type DatabaseOptions struct {
	User     string
	Password string
	Host     string
	Port     string
}

// LoadDatabaseOptionFile reads the [client] section of a MySQL option file such as ~/.my.cnf.
func LoadDatabaseOptionFile(path string) (DatabaseOptions, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:    true,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return DatabaseOptions{}, fmt.Errorf("failed to load option file: %w", err)
	}

	section, err := cfg.GetSection("client")
	if err != nil {
		return DatabaseOptions{}, fmt.Errorf("option file %s has no [client] section", path)
	}

	return DatabaseOptions{
		User:     section.Key("user").String(),
		Password: section.Key("password").String(),
		Host:     section.Key("host").String(),
		Port:     section.Key("port").String(),
	}, nil
}
