package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"digit-recognizer/db"
	"digit-recognizer/internal/config"

	"github.com/stretchr/testify/require"
)

// SetupTestDatabase opens a file-backed SQLite database in a temp dir and
// initialises the schema. It is closed when the test ends.
func SetupTestDatabase(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	testDB, err := db.ConnectToSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Close() })

	require.NoError(t, db.InitializeSchema(testDB))
	return testDB
}

func SetupTestRepositoryFactory(t *testing.T) *db.RepositoryFactory {
	return db.NewRepositoryFactory(SetupTestDatabase(t), config.SQLite)
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Port:                "0",
		DatabaseType:        config.SQLite,
		DatabaseName:        "users_test",
		SessionSecret:       "test_session_secret_for_testing_only",
		SessionMaxAge:       3600,
		AdminUsername:       "test_admin",
		AdminPassword:       "test_password",
		JwtKey:              []byte("test_jwt_secret_key_for_testing_only"),
		JwtTTL:              time.Hour,
		StaticDir:           "static",
		VisualizationImages: []string{"static/images/image1.png", "static/images/image2.png"},
		HashIterations:      1000,
		LogLevel:            "debug",
	}
}
