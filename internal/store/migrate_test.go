// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/pkg/errutil"
)

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("invalid://url")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

// TestNewMigrator_PostgresqlScheme verifies that postgresql:// URLs are
// converted to pgx5:// for golang-migrate. With the conversion in place the
// failure is a connection error, never "unknown driver".
func TestNewMigrator_PostgresqlScheme(t *testing.T) {
	_, err := NewMigrator("postgresql://localhost:5432/gatewarden")
	require.Error(t, err, "should fail due to connection, not URL scheme")
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	assert.NotContains(t, err.Error(), "unknown driver")
}

// mockMigrate implements migrateIface for testing.
type mockMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	versionVal     uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDbErr     error
}

func (m *mockMigrate) Up() error                    { return m.upErr }
func (m *mockMigrate) Down() error                  { return m.downErr }
func (m *mockMigrate) Steps(_ int) error            { return m.stepsErr }
func (m *mockMigrate) Version() (uint, bool, error) { return m.versionVal, m.dirty, m.versionErr }
func (m *mockMigrate) Force(_ int) error            { return m.forceErr }
func (m *mockMigrate) Close() (error, error)        { return m.closeSourceErr, m.closeDbErr }

func TestMigrator_Up(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Up())
	})

	t.Run("no change is success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})

	t.Run("failure", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{upErr: errors.New("database locked")}}
		err := m.Up()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	t.Run("no change is success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: migrate.ErrNoChange}}
		require.NoError(t, m.Down())
	})

	t.Run("failure", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{downErr: errors.New("constraint violation")}}
		err := m.Down()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
	})
}

func TestMigrator_Steps(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Steps(1))
	})

	t.Run("no change is success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{stepsErr: migrate.ErrNoChange}}
		require.NoError(t, m.Steps(-1))
	})

	t.Run("failure", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{stepsErr: errors.New("invalid step")}}
		err := m.Steps(2)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_STEPS_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("reports version and dirty state", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionVal: 2, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(2), version)
		assert.True(t, dirty)
	})

	t.Run("fresh database reads as version zero", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("failure", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: errors.New("connection lost")}}
		_, _, err := m.Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Force(1))
	})

	t.Run("rejects negative version", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		err := m.Force(-1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_VERSION")
	})

	t.Run("failure", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{forceErr: errors.New("invalid version")}}
		err := m.Force(1)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_FORCE_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{}}
		require.NoError(t, m.Close())
	})

	t.Run("source error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{closeSourceErr: errors.New("source close failed")}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
		errutil.AssertErrorContext(t, err, "component", "source")
	})

	t.Run("database error", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{closeDbErr: errors.New("db close failed")}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
		errutil.AssertErrorContext(t, err, "component", "database")
	})

	t.Run("both errors are reported", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{
			closeSourceErr: errors.New("source close failed"),
			closeDbErr:     errors.New("db close failed"),
		}}
		err := m.Close()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
		errutil.AssertErrorContext(t, err, "component", "both")
		assert.Contains(t, err.Error(), "source close failed")
		assert.Contains(t, err.Error(), "db close failed")
	})
}
