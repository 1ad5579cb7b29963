package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "migrations"

func TestMigrationsDirIsValid(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestMigrationsCoverCoreTables(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	var all strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
		if err != nil {
			t.Fatalf("read %s: %v", e.Name(), err)
		}
		all.Write(b)
	}

	sql := all.String()
	for _, table := range []string{
		"CREATE TABLE suppliers",
		"CREATE TABLE supplier_products",
		"CREATE TABLE supplier_orders",
		"CREATE TABLE orders",
		"CREATE TABLE outbox_events",
		"CREATE UNIQUE INDEX ux_supplier_orders_order_supplier",
		"CREATE UNIQUE INDEX ux_suppliers_code",
	} {
		if !strings.Contains(sql, table) {
			t.Fatalf("migrations missing %q", table)
		}
	}
}
