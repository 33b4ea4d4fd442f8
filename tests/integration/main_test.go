package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
)

var (
	testDB   *TestDB
	setupErr error
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	testDB, setupErr = SetupTestDatabase(ctx)
	if setupErr != nil {
		fmt.Fprintf(os.Stderr, "integration setup failed: %v\n", setupErr)
	}

	code := m.Run()

	if testDB != nil {
		_ = testDB.Teardown(ctx)
	}
	os.Exit(code)
}

// requireDB skips the test when no container runtime is available
func requireDB(t *testing.T) *TestDB {
	t.Helper()
	if setupErr != nil {
		t.Skipf("skipping: %v", setupErr)
	}
	t.Cleanup(func() {
		if err := testDB.CleanupTables(context.Background()); err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
	})
	return testDB
}
