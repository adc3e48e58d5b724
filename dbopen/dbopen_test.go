package dbopen_test

import (
	"context"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"driveorient/dbopen"
)

func TestOpenPragmas(t *testing.T) {
	db := dbopen.OpenMemory(t)

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatal(err)
	}
	// :memory: may report "memory" instead of "wal" for journal_mode,
	// but the PRAGMA was still executed successfully.
	if journalMode != "wal" && journalMode != "memory" {
		t.Fatalf("journal_mode = %q, want wal or memory", journalMode)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Fatalf("foreign_keys = %d, want 1", fk)
	}

	var busyTimeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatal(err)
	}
	if busyTimeout != 10_000 {
		t.Fatalf("busy_timeout = %d, want 10000", busyTimeout)
	}
}

func TestWithBusyTimeout(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithBusyTimeout(5000))

	var bt int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&bt); err != nil {
		t.Fatal(err)
	}
	if bt != 5000 {
		t.Fatalf("busy_timeout = %d, want 5000", bt)
	}
}

func TestWithSchema(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(
		"CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)"))

	if _, err := db.Exec("INSERT INTO kv (k, v) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("insert into schema table: %v", err)
	}
}

func TestExecRetryPassesThroughErrors(t *testing.T) {
	db := dbopen.OpenMemory(t)

	_, err := dbopen.Exec(context.Background(), db, "INSERT INTO missing VALUES (1)")
	if err == nil {
		t.Fatal("Exec on missing table: want error")
	}
	if dbopen.IsBusy(err) {
		t.Fatalf("IsBusy(%v) = true, want false", err)
	}
}

func TestIsBusy(t *testing.T) {
	if dbopen.IsBusy(nil) {
		t.Error("IsBusy(nil) = true")
	}
	if !dbopen.IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Error("IsBusy(SQLITE_BUSY) = false")
	}
	if dbopen.IsBusy(errors.New("syntax error")) {
		t.Error("IsBusy(syntax error) = true")
	}
}
