package migration

import (
	"testing"

	"github.com/hydrocore/waterworks/pkg/db"
)

func TestAutoMigrateCreatesSchema(t *testing.T) {
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("test db: %v", err)
	}

	if err := AutoMigrate(conn); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	for _, table := range []string{
		"areas", "branches", "source_types", "source_names",
		"users", "sessions", "daily_records", "monthly_records",
		"required_fields_configs", "audit_logs",
	} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("table %s missing", table)
		}
	}
}
