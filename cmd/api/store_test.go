package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskmanager/configs"
)

func testConfig(t *testing.T, driver string) configs.Config {
	t.Helper()
	return configs.Config{
		DBDriver:   driver,
		SQLitePath: filepath.Join(t.TempDir(), "db.sqlite"),
		BcryptCost: bcrypt.MinCost,
	}
}

func TestOpenStoreMemory(t *testing.T) {
	store, cleanup, err := openStore(context.Background(), testConfig(t, "memory"))
	require.NoError(t, err)
	defer cleanup()

	user, err := store.CreateUser(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
}

func TestOpenStoreSQLiteCreatesTables(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	store, cleanup, err := openStore(context.Background(), cfg)
	require.NoError(t, err)

	_, err = store.CreateUser(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	cleanup()

	// data survives a reopen of the same file
	store, cleanup, err = openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	_, ok, err := store.VerifyCredentials(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, _, err := openStore(context.Background(), testConfig(t, "mysql"))
	assert.Error(t, err)
}

func TestWithDBRefusesMemory(t *testing.T) {
	err := withDB(context.Background(), testConfig(t, "memory"), func(context.Context, *databaseHandle) error {
		return nil
	})
	assert.Error(t, err)
}

func TestCreateUserCommand(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "db.sqlite"))
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("REDIS_HOST", "")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"create-user", "alice", "pw1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "User 'alice' is created with id 1.")

	// same name again is a conflict
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"create-user", "alice", "pw2"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestMigrateAndDropCommands(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "db.sqlite"))

	for _, args := range [][]string{{"migrate"}, {"migrate"}, {"drop"}} {
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		require.NoError(t, cmd.ExecuteContext(context.Background()), args)
		assert.NotEmpty(t, out.String())
	}
}
