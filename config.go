package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type connSection struct {
	Family   string `toml:"family"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	TLS      bool   `toml:"tls"`
}

type migrationSection struct {
	Tables       []string `toml:"tables"`
	DropIfExists bool     `toml:"drop_if_exists"`
	DryRun       bool     `toml:"dry_run"`
	BatchSize    int      `toml:"batch_size"`
}

type fileConfig struct {
	Source    connSection      `toml:"source"`
	Target    connSection      `toml:"target"`
	Migration migrationSection `toml:"migration"`
}

func defaultPort(f Family) int {
	switch f {
	case FamilyMySQL:
		return 3306
	case FamilyPostgres:
		return 5432
	case FamilyMongo:
		return 27017
	default:
		return 0 // sqlite is file-based
	}
}

func (c connSection) resolve(role string) (ConnConfig, error) {
	family, err := parseFamily(c.Family)
	if err != nil {
		return ConnConfig{}, fmt.Errorf("%s: %w", role, err)
	}
	cfg := ConnConfig{
		Family:   family,
		Host:     c.Host,
		Port:     c.Port,
		Database: c.Database,
		Username: c.Username,
		Password: c.Password,
		TLS:      c.TLS,
	}
	if cfg.Host == "" && family != FamilySQLite {
		return ConnConfig{}, fmt.Errorf("%s: host is required for %s", role, family)
	}
	if cfg.Database == "" && family != FamilySQLite {
		return ConnConfig{}, fmt.Errorf("%s: database is required for %s", role, family)
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort(family)
	}
	return cfg, nil
}

// loadConfig reads a TOML migration plan. Unknown keys are rejected so a
// typo cannot silently disable an option.
func loadConfig(path string) (*Plan, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse %s: unknown key(s): %s", path, strings.Join(keys, ", "))
	}

	source, err := fc.Source.resolve("source")
	if err != nil {
		return nil, err
	}
	target, err := fc.Target.resolve("target")
	if err != nil {
		return nil, err
	}

	if source.Family == target.Family && source.Host == target.Host && source.Database == target.Database {
		return nil, fmt.Errorf("source and target are the same database (%s %s/%s)",
			source.Family, source.Host, source.Database)
	}

	plan := &Plan{
		Source:       source,
		Target:       target,
		Tables:       fc.Migration.Tables,
		DropIfExists: fc.Migration.DropIfExists,
		DryRun:       fc.Migration.DryRun,
		BatchSize:    fc.Migration.BatchSize,
	}
	if plan.BatchSize <= 0 {
		plan.BatchSize = defaultBatchSize
	}
	return plan, nil
}
