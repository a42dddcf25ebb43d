package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Sentinel errors surfaced by the repositories.
var (
	// ErrNotFound means the record does not exist and has no lazy-initialize path
	ErrNotFound = errors.New("database: record not found")
	// ErrConflict means an optimistic-concurrency check failed; safe to retry
	ErrConflict = errors.New("database: concurrent update conflict")
)

// DB is the global database connection
var DB *sqlx.DB

// isUniqueViolation reports whether an insert lost a race on a unique key.
// Repositories map this to ErrConflict so the service retry loop re-reads
// the winner's row instead of failing the request.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}
	return false
}

var dialect string

// Dialect returns the active database type, "sqlite" or "postgres"
func Dialect() string {
	return dialect
}

// Connect establishes a connection to the database. DB_TYPE selects the
// engine (sqlite by default); postgres expects DATABASE_URL.
func Connect() error {
	dialect = os.Getenv("DB_TYPE")
	if dialect == "" {
		dialect = "sqlite"
	}

	switch dialect {
	case "sqlite":
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}

		dbPath := filepath.Join(dataDir, "lingopath.db")
		db, err := sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		DB = db

	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
		}

		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)

		DB = db

	default:
		return fmt.Errorf("unsupported DB_TYPE: %s", dialect)
	}

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	autoID := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == "postgres" {
		autoID = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS units (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			ord INTEGER NOT NULL DEFAULT 0,
			unlock_level INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS lessons (
			id TEXT PRIMARY KEY,
			unit_id TEXT NOT NULL REFERENCES units(id),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			ord INTEGER NOT NULL DEFAULT 0,
			unlock_level INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id TEXT PRIMARY KEY,
			lesson_id TEXT NOT NULL REFERENCES lessons(id),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			difficulty INTEGER NOT NULL DEFAULT 1,
			xp_reward INTEGER NOT NULL DEFAULT 10,
			ord INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS skill_prerequisites (
			skill_id TEXT NOT NULL REFERENCES skills(id),
			prerequisite_id TEXT NOT NULL,
			UNIQUE(skill_id, prerequisite_id)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS review_records (
			id %s,
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval INTEGER NOT NULL DEFAULT 1,
			repetitions INTEGER NOT NULL DEFAULT 0,
			last_quality INTEGER NOT NULL DEFAULT 0,
			last_reviewed_at TIMESTAMP NOT NULL,
			next_due_at TIMESTAMP NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, item_id)
		)`, autoID),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS performance_records (
			id %s,
			user_id TEXT NOT NULL,
			skill_id TEXT NOT NULL,
			item_id TEXT NOT NULL DEFAULT '',
			total_attempts INTEGER NOT NULL DEFAULT 0,
			correct_attempts INTEGER NOT NULL DEFAULT 0,
			average_time REAL NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, skill_id, item_id)
		)`, autoID),
		`CREATE TABLE IF NOT EXISTS path_progress (
			user_id TEXT PRIMARY KEY,
			progress TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS economy (
			user_id TEXT PRIMARY KEY,
			xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			hearts INTEGER NOT NULL DEFAULT 5,
			max_hearts INTEGER NOT NULL DEFAULT 5,
			last_heart_regen TIMESTAMP NOT NULL,
			version INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}

	return nil
}
