package migrations_test

import (
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-connect-backend/migrations"
)

func TestMigrationsAreOrdered(t *testing.T) {
	goose.SetBaseFS(migrations.Migrations)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	collected, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, collected, 2)
	assert.Equal(t, int64(1), collected[0].Version)
	assert.Equal(t, int64(2), collected[1].Version)
}

func TestProfileAddressIsUnique(t *testing.T) {
	sql, err := migrations.Migrations.ReadFile("00002_unique_profile_address.sql")
	require.NoError(t, err)
	assert.Contains(t, string(sql), "ADD CONSTRAINT student_profiles_address_id_key UNIQUE (address_id)")
	assert.Contains(t, string(sql), "DROP CONSTRAINT IF EXISTS student_profiles_address_id_key")
}
