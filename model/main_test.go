package model

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// setupTestDB points DB at a fresh in-memory SQLite database.
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	DB = db
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
}

func createTestUser(t *testing.T, id string, credit int64) {
	t.Helper()
	require.NoError(t, (&User{Id: id, Username: id, CreditBalance: credit}).Insert())
}
