package main

import (
	"strings"
	"testing"
)

func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames: %v", err)
	}
	if len(names) == 0 || names[0] != "migrations/001_init.sql" {
		t.Fatalf("names = %v, want 001_init.sql first", names)
	}

	schema, err := migrationsFS.ReadFile(names[0])
	if err != nil {
		t.Fatalf("read %s: %v", names[0], err)
	}
	for _, table := range []string{"vendors", "menu_items", "combo_rules", "custom_combos", "orders", "order_tracking", "order_message_pointers"} {
		if !strings.Contains(string(schema), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("schema has no %s table", table)
		}
	}
}
