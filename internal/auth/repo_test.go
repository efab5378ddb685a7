package auth

import (
	"os"
	"regexp"
	"strings"
	"testing"
)

// The session audit insert must only name columns the shipped DDL defines;
// a drift here makes every login's session row silently fail to persist,
// since the handler treats registration errors as non-fatal.
func TestSessionInsertMatchesSchema(t *testing.T) {
	ddl, err := os.ReadFile("../../scripts/schema/schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	block := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS sessions \((.*?)\);`).FindSubmatch(ddl)
	if block == nil {
		t.Fatal("sessions table not found in schema")
	}
	defined := make(map[string]bool)
	for _, line := range strings.Split(string(block[1]), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			defined[strings.TrimSuffix(fields[0], ",")] = true
		}
	}

	list := regexp.MustCompile(`INSERT INTO sessions \(([^)]+)\)`).FindStringSubmatch(insertSessionSQL)
	if list == nil {
		t.Fatal("insert column list not found")
	}
	for _, col := range strings.Split(list[1], ",") {
		col = strings.TrimSpace(col)
		if !defined[col] {
			t.Errorf("insert names column %q which the sessions DDL does not define", col)
		}
	}
}
