package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olenaliuby/social-media-api/models"
)

func TestNewSQLiteAndAutoMigrate(t *testing.T) {
	db, err := New(DriverSQLite, filepath.Join(t.TempDir(), "social_test.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(false))
	require.NoError(t, db.Ping())

	user := models.User{Email: "a@example.com", PwHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	profile := models.Profile{UserID: user.ID, Username: "a", FirstName: "A", LastName: "B"}
	require.NoError(t, db.Create(&profile).Error)

	// deleting the identity cascades to the profile through the FK
	require.NoError(t, db.Delete(&user).Error)
	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := New("mysql", "dsn", false)
	require.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	require.Equal(t, "app.db?_foreign_keys=on", withForeignKeys("app.db"))
	require.Equal(t, "file:x?mode=memory&_foreign_keys=on", withForeignKeys("file:x?mode=memory"))
	require.Equal(t, "file:x?_fk=1", withForeignKeys("file:x?_fk=1"))
}
