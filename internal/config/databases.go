package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sqllab/internal/domain"
)

// DatabaseEntry is one registration in the databases file.
type DatabaseEntry struct {
	Name            string `yaml:"name"`
	Engine          string `yaml:"engine"`
	DSN             string `yaml:"dsn"`
	ExposeInSQLLab  *bool  `yaml:"expose_in_sqllab"`
	AllowRunAsync   bool   `yaml:"allow_run_async"`
	AllowCTAS       bool   `yaml:"allow_ctas"`
	AllowDML        bool   `yaml:"allow_dml"`
	ForceCTASSchema string `yaml:"force_ctas_schema"`
}

type databasesFile struct {
	Databases []DatabaseEntry `yaml:"databases"`
}

// ToDomain converts the entry. DSNs may reference environment variables as
// ${NAME}.
func (e DatabaseEntry) ToDomain() domain.Database {
	db := domain.Database{
		Name:           e.Name,
		Engine:         e.Engine,
		DSN:            os.ExpandEnv(e.DSN),
		ExposeInSQLLab: e.ExposeInSQLLab == nil || *e.ExposeInSQLLab,
		AllowRunAsync:  e.AllowRunAsync,
		AllowCTAS:      e.AllowCTAS,
		AllowDML:       e.AllowDML,
	}
	if e.ForceCTASSchema != "" {
		schema := e.ForceCTASSchema
		db.ForceCTASSchema = &schema
	}
	return db
}

// LoadDatabasesFile parses a YAML file of database registrations.
func LoadDatabasesFile(path string) ([]DatabaseEntry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f databasesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.Databases))
	for i, e := range f.Databases {
		if e.Name == "" {
			return nil, fmt.Errorf("%s: database #%d has no name", path, i+1)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("%s: duplicate database %q", path, e.Name)
		}
		seen[e.Name] = true
	}
	return f.Databases, nil
}
