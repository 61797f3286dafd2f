// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"os"
	"testing"
)

func requireTestDatabase(t *testing.T) string {
	t.Helper()

	if testSchemaName == "" {
		t.Skip("DATABASE_URL not set")
	}

	return os.Getenv("DATABASE_URL")
}

func TestInitInvalidDatabaseURL(t *testing.T) {
	baseURL := requireTestDatabase(t)

	t.Setenv("DATABASE_URL", "postgres://")

	if err := Init(testContext()); err == nil {
		t.Fatalf("expected error for invalid database url")
	}

	if err := initTestPool(testContext(), baseURL, testSchemaName); err != nil {
		t.Fatalf("failed to re-init pool: %v", err)
	}
}

func TestCloseDisablesPool(t *testing.T) {
	baseURL := requireTestDatabase(t)

	if !Enabled() {
		t.Fatalf("expected pool to be initialized")
	}

	Close()

	if Enabled() || GetPool() != nil {
		t.Fatalf("expected pool to be cleared after Close")
	}

	if err := initTestPool(testContext(), baseURL, testSchemaName); err != nil {
		t.Fatalf("failed to re-init pool: %v", err)
	}
}

func TestSyncSchemaIsIdempotent(t *testing.T) {
	baseURL := requireTestDatabase(t)

	searchPathURL, err := withSearchPath(baseURL, testSchemaName)
	if err != nil {
		t.Fatalf("withSearchPath failed: %v", err)
	}

	t.Setenv("DATABASE_URL", searchPathURL)

	for i := 0; i < 2; i++ {
		if err := SyncSchema(testContext()); err != nil {
			t.Fatalf("SyncSchema run %d failed: %v", i+1, err)
		}
	}
}
