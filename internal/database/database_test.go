package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"kv_store", "submission_log"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDB_IsIdempotent(t *testing.T) {
	path := t.TempDir() + "/quiniela.db"

	_, teardown, err := InitDB(path, "", "")
	require.NoError(t, err)
	teardown()

	db, teardown, err := InitDB(path, "", "")
	require.NoError(t, err, "re-running migrations on an existing file should be a no-op")
	defer teardown()

	var version int64
	err = db.QueryRow("SELECT MAX(version_id) FROM goose_db_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}
