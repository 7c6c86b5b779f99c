package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[source]
family = "mysql"
host = "db1.internal"
database = "shop"
username = "reader"
password = "secret"

[target]
family = "postgres"
host = "db2.internal"
port = 5433
database = "shop"
tls = true

[migration]
tables = ["customers", "orders"]
drop_if_exists = true
batch_size = 500
`)
	plan, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if plan.Source.Family != FamilyMySQL || plan.Source.Port != 3306 {
		t.Errorf("source = %+v, want mysql with default port 3306", plan.Source)
	}
	if plan.Target.Family != FamilyPostgres || plan.Target.Port != 5433 || !plan.Target.TLS {
		t.Errorf("target = %+v, want postgresql:5433 with tls", plan.Target)
	}
	if len(plan.Tables) != 2 || !plan.DropIfExists || plan.BatchSize != 500 {
		t.Errorf("migration section = %+v", plan)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
[source]
family = "mongodb"
host = "localhost"
database = "app"

[target]
family = "sqlite"
database = "out.db"
`)
	plan, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if plan.Source.Port != 27017 {
		t.Errorf("mongodb default port = %d, want 27017", plan.Source.Port)
	}
	if plan.BatchSize != defaultBatchSize {
		t.Errorf("default batch size = %d, want %d", plan.BatchSize, defaultBatchSize)
	}
	if plan.DryRun || plan.DropIfExists {
		t.Error("flags should default to false")
	}
	if len(plan.Tables) != 0 {
		t.Errorf("tables should default to empty (all), got %v", plan.Tables)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[source]
family = "mysql"
host = "h"
database = "d"
drop_if_exist = true

[target]
family = "sqlite"
database = "out.db"
`)
	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("expected an error for an unknown key")
	}
	if !strings.Contains(err.Error(), "drop_if_exist") {
		t.Errorf("error should name the offending key, got %v", err)
	}
}

func TestLoadConfigRejectsUnknownFamily(t *testing.T) {
	path := writeConfig(t, `
[source]
family = "oracle"
host = "h"
database = "d"

[target]
family = "mysql"
host = "h2"
database = "d"
`)
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("expected an unsupported-family error, got %v", err)
	}
}

func TestLoadConfigRejectsSameDatabase(t *testing.T) {
	path := writeConfig(t, `
[source]
family = "postgres"
host = "db.internal"
database = "app"

[target]
family = "postgresql"
host = "db.internal"
database = "app"
`)
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "same database") {
		t.Fatalf("expected a same-database error, got %v", err)
	}
}

func TestLoadConfigRequiresHostAndDatabase(t *testing.T) {
	path := writeConfig(t, `
[source]
family = "mysql"
database = "d"

[target]
family = "sqlite"
database = "out.db"
`)
	_, err := loadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "host is required") {
		t.Fatalf("expected a missing-host error, got %v", err)
	}
}

func TestLoadConfigFamilyAliases(t *testing.T) {
	path := writeConfig(t, `
[source]
family = "mariadb"
host = "h"
database = "d"

[target]
family = "mongo"
host = "h2"
database = "d2"
`)
	plan, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if plan.Source.Family != FamilyMySQL {
		t.Errorf("mariadb should alias to mysql, got %s", plan.Source.Family)
	}
	if plan.Target.Family != FamilyMongo {
		t.Errorf("mongo should alias to mongodb, got %s", plan.Target.Family)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
