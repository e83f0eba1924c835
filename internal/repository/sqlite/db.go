package sqlite

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the database file and applies the schema
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    provider TEXT NOT NULL,
    external_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    aws_access_key_id TEXT NOT NULL DEFAULT '',
    aws_secret_access_key TEXT NOT NULL DEFAULT '',
    aws_default_region TEXT NOT NULL DEFAULT '',
    last_scanned_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts(owner_id);

CREATE TABLE IF NOT EXISTS region_scopes (
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    region TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (account_id, region)
);

CREATE TABLE IF NOT EXISTS resource_type_scopes (
    resource_type TEXT PRIMARY KEY,
    enabled INTEGER NOT NULL DEFAULT 1,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS resources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    arn TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL,
    region TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '{}',
    metadata TEXT NOT NULL DEFAULT '{}',
    discovered_at TIMESTAMP NOT NULL,
    last_seen_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_resources_account ON resources(account_id);

CREATE TABLE IF NOT EXISTS policies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    required_tags TEXT NOT NULL DEFAULT '{}',
    resource_types TEXT NOT NULL DEFAULT '[]',
    severity TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_policies_owner ON policies(owner_id);

CREATE TABLE IF NOT EXISTS violations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    resource_id INTEGER NOT NULL REFERENCES resources(id),
    policy_id INTEGER NOT NULL,
    account_id INTEGER NOT NULL,
    scan_job_id TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    severity TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '{}',
    detected_at TIMESTAMP NOT NULL,
    resolved_at TIMESTAMP,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (resource_id, policy_id)
);
CREATE INDEX IF NOT EXISTS idx_violations_account ON violations(account_id);

CREATE TABLE IF NOT EXISTS scan_jobs (
    id TEXT PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    requested_by INTEGER NOT NULL,
    status TEXT NOT NULL,
    resources_scanned INTEGER NOT NULL DEFAULT 0,
    violations_found INTEGER NOT NULL DEFAULT 0,
    violations_resolved INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMP,
    completed_at TIMESTAMP,
    error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_jobs_account ON scan_jobs(account_id, status);
`)
	return err
}
