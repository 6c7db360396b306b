package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the backing database from a DSN. Postgres is the production
// target; a sqlite DSN (file: or :memory:) is accepted for local development.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn must not be empty")
	}

	dialector := postgres.Open(dsn)
	if isSQLiteDSN(dsn) {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func isSQLiteDSN(dsn string) bool {
	return len(dsn) > 5 && (dsn[:5] == "file:" || dsn == ":memory:")
}
