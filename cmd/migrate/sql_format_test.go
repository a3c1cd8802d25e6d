package main

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"kindlesync/db/migrations"
)

var migrationName = regexp.MustCompile(`^\d{5}_[a-z0-9_]+\.sql$`)

func TestEmbeddedMigrations_Format(t *testing.T) {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no embedded migrations")
	}

	for _, name := range names {
		if !migrationName.MatchString(name) {
			t.Errorf("%s: want NNNNN_snake_case.sql", name)
		}
		b, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", name, err)
		}
		s := string(b)
		up := strings.Index(s, "-- +goose Up")
		down := strings.Index(s, "-- +goose Down")
		if up < 0 {
			t.Errorf("%s missing '-- +goose Up'", name)
		}
		if down < 0 {
			t.Errorf("%s missing '-- +goose Down'", name)
		}
		if up >= 0 && down >= 0 && down < up {
			t.Errorf("%s: Down section precedes Up", name)
		}
	}
}
