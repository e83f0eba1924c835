package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

// AccountRepository implements account.Repository
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) account.Repository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, acct *account.Account) (int64, error) {
	now := time.Now()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	query := `
		INSERT INTO accounts (owner_id, name, provider, external_id, status,
			aws_access_key_id, aws_secret_access_key, aws_default_region,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		acct.OwnerID, acct.Name, acct.Provider, acct.ExternalID, acct.Status,
		acct.Credentials.AWSAccessKeyID, acct.Credentials.AWSSecretAccessKey,
		acct.Credentials.AWSDefaultRegion, acct.CreatedAt, acct.UpdatedAt,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create account", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get account id", err)
	}
	acct.ID = id
	return id, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT id, owner_id, name, provider, external_id, status,
			aws_access_key_id, aws_secret_access_key, aws_default_region,
			last_scanned_at, created_at, updated_at
		FROM accounts WHERE id = ?
	`
	var acct account.Account
	var lastScanned sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&acct.ID, &acct.OwnerID, &acct.Name, &acct.Provider, &acct.ExternalID,
		&acct.Status, &acct.Credentials.AWSAccessKeyID,
		&acct.Credentials.AWSSecretAccessKey, &acct.Credentials.AWSDefaultRegion,
		&lastScanned, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Account")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get account", err)
	}
	if lastScanned.Valid {
		acct.LastScannedAt = &lastScanned.Time
	}
	return &acct, nil
}

// Update updates an account
func (r *AccountRepository) Update(ctx context.Context, acct *account.Account) error {
	acct.UpdatedAt = time.Now()

	query := `
		UPDATE accounts
		SET name = ?, status = ?, external_id = ?,
			aws_access_key_id = ?, aws_secret_access_key = ?, aws_default_region = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		acct.Name, acct.Status, acct.ExternalID,
		acct.Credentials.AWSAccessKeyID, acct.Credentials.AWSSecretAccessKey,
		acct.Credentials.AWSDefaultRegion, acct.UpdatedAt, acct.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update account", err)
	}
	return requireRowsAffected(result, "Account")
}

// UpdateLastScanned stamps the account's last successful scan time
func (r *AccountRepository) UpdateLastScanned(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE accounts SET last_scanned_at = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, at, time.Now(), id)
	if err != nil {
		return errors.DatabaseError("Failed to update last scanned time", err)
	}
	return requireRowsAffected(result, "Account")
}

// Delete deletes an account
func (r *AccountRepository) Delete(ctx context.Context, ownerID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return errors.DatabaseError("Failed to delete account", err)
	}
	return requireRowsAffected(result, "Account")
}

// List retrieves accounts for an owner
func (r *AccountRepository) List(ctx context.Context, ownerID int64, filter account.Filter) ([]*account.Account, error) {
	query := `
		SELECT id, owner_id, name, provider, external_id, status,
			aws_access_key_id, aws_secret_access_key, aws_default_region,
			last_scanned_at, created_at, updated_at
		FROM accounts WHERE owner_id = ?
	`
	args := []interface{}{ownerID}
	if filter.Provider != "" {
		query += ` AND provider = ?`
		args = append(args, filter.Provider)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY id`

	return r.queryAccounts(ctx, query, args...)
}

// ListByStatus retrieves accounts across owners by status
func (r *AccountRepository) ListByStatus(ctx context.Context, status string) ([]*account.Account, error) {
	query := `
		SELECT id, owner_id, name, provider, external_id, status,
			aws_access_key_id, aws_secret_access_key, aws_default_region,
			last_scanned_at, created_at, updated_at
		FROM accounts WHERE status = ? ORDER BY id
	`
	return r.queryAccounts(ctx, query, status)
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...interface{}) ([]*account.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list accounts", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		var acct account.Account
		var lastScanned sql.NullTime
		if err := rows.Scan(
			&acct.ID, &acct.OwnerID, &acct.Name, &acct.Provider, &acct.ExternalID,
			&acct.Status, &acct.Credentials.AWSAccessKeyID,
			&acct.Credentials.AWSSecretAccessKey, &acct.Credentials.AWSDefaultRegion,
			&lastScanned, &acct.CreatedAt, &acct.UpdatedAt,
		); err != nil {
			return nil, errors.DatabaseError("Failed to scan account row", err)
		}
		if lastScanned.Valid {
			acct.LastScannedAt = &lastScanned.Time
		}
		accounts = append(accounts, &acct)
	}
	return accounts, rows.Err()
}

// UpsertRegionScope inserts a region scope or updates its enabled flag
func (r *AccountRepository) UpsertRegionScope(ctx context.Context, scope *account.RegionScope) error {
	if scope.CreatedAt.IsZero() {
		scope.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO region_scopes (account_id, region, enabled, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id, region) DO UPDATE SET enabled = excluded.enabled
	`
	_, err := r.db.ExecContext(ctx, query,
		scope.AccountID, scope.Region, scope.Enabled, scope.CreatedAt)
	if err != nil {
		return errors.DatabaseError("Failed to upsert region scope", err)
	}
	return nil
}

// EnsureRegionScope inserts a region scope if none exists. A user-toggled
// row is never overwritten; the return value reports whether a row was
// created.
func (r *AccountRepository) EnsureRegionScope(ctx context.Context, scope *account.RegionScope) (bool, error) {
	if scope.CreatedAt.IsZero() {
		scope.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO region_scopes (account_id, region, enabled, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id, region) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		scope.AccountID, scope.Region, scope.Enabled, scope.CreatedAt)
	if err != nil {
		return false, errors.DatabaseError("Failed to ensure region scope", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows > 0, nil
}

// ListRegionScopes retrieves all region scopes for an account
func (r *AccountRepository) ListRegionScopes(ctx context.Context, accountID int64) ([]*account.RegionScope, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id, region, enabled, created_at FROM region_scopes
		 WHERE account_id = ? ORDER BY region`, accountID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list region scopes", err)
	}
	defer rows.Close()

	var scopes []*account.RegionScope
	for rows.Next() {
		var s account.RegionScope
		if err := rows.Scan(&s.AccountID, &s.Region, &s.Enabled, &s.CreatedAt); err != nil {
			return nil, errors.DatabaseError("Failed to scan region scope row", err)
		}
		scopes = append(scopes, &s)
	}
	return scopes, rows.Err()
}

// EnabledRegions retrieves the enabled region codes for an account
func (r *AccountRepository) EnabledRegions(ctx context.Context, accountID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT region FROM region_scopes WHERE account_id = ? AND enabled = 1 ORDER BY region`,
		accountID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list enabled regions", err)
	}
	defer rows.Close()

	var regions []string
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, errors.DatabaseError("Failed to scan region row", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func requireRowsAffected(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound(entity)
	}
	return nil
}
