package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	"github.com/autoecole-hub/console_backend/internal/models"
	"github.com/autoecole-hub/console_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schoolAccountColumns = `account_id, name, expected_amount, paid_override, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxSchoolAccountRepository struct {
	BaseRepository
}

// newPgxSchoolAccountRepository creates a new repository for school account data.
func newPgxSchoolAccountRepository(pool *pgxpool.Pool) portsrepo.SchoolAccountRepositoryFacade {
	return &PgxSchoolAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSchoolAccountRepository implements portsrepo.SchoolAccountRepositoryFacade
var _ portsrepo.SchoolAccountRepositoryFacade = (*PgxSchoolAccountRepository)(nil)

func scanSchoolAccount(row pgx.Row) (models.SchoolAccount, error) {
	var m models.SchoolAccount
	err := row.Scan(
		&m.AccountID,
		&m.Name,
		&m.ExpectedAmount,
		&m.PaidOverride,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new school account.
func (r *PgxSchoolAccountRepository) SaveAccount(ctx context.Context, account domain.SchoolAccount) error {
	m := mapping.ToModelSchoolAccount(account)

	query := `
		INSERT INTO school_accounts (` + schoolAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.ExpectedAmount,
		m.PaidOverride,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: school account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return apperrors.NewAppError(500, "failed to save school account "+m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves a school account by its ID.
func (r *PgxSchoolAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.SchoolAccount, error) {
	query := `SELECT ` + schoolAccountColumns + ` FROM school_accounts WHERE account_id = $1;`
	m, err := scanSchoolAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find school account by ID "+accountID, err)
	}
	account := mapping.ToDomainSchoolAccount(m)
	return &account, nil
}

// ListAccounts retrieves school accounts ordered by name.
func (r *PgxSchoolAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.SchoolAccount, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + schoolAccountColumns + ` FROM school_accounts ORDER BY name ASC LIMIT $1 OFFSET $2;`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query school accounts", err)
	}
	defer rows.Close()

	accounts := []domain.SchoolAccount{}
	for rows.Next() {
		m, scanErr := scanSchoolAccount(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan school account row", scanErr)
		}
		accounts = append(accounts, mapping.ToDomainSchoolAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating school account rows", err)
	}

	return accounts, nil
}

// UpdateAccount persists edits to a school account.
func (r *PgxSchoolAccountRepository) UpdateAccount(ctx context.Context, account domain.SchoolAccount) error {
	m := mapping.ToModelSchoolAccount(account)

	query := `
		UPDATE school_accounts
		SET name = $2,
		    expected_amount = $3,
		    is_active = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.ExpectedAmount,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update school account "+m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("school account " + m.AccountID + " not found for update")
	}
	return nil
}

// SetReconciledAmounts persists the paid override and expected amount together
// with the compensating transaction in a single database transaction. The account
// row is locked first so concurrent reconciliations of the same account serialize,
// and the stored override is compared against the one the caller observed: a
// reconciliation that raced past this one already changed the baseline, so the
// write is refused with ErrConflict instead of booking a stale delta.
// The treasury summary is deliberately NOT folded here; the caller applies that
// delta separately so a failed fold can be retried without repeating this write.
func (r *PgxSchoolAccountRepository) SetReconciledAmounts(ctx context.Context, accountID string, observedOverride *decimal.Decimal, paidOverride decimal.Decimal, expectedAmount decimal.Decimal, compensating *domain.Transaction, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT paid_override FROM school_accounts WHERE account_id = $1 FOR UPDATE;`
	var currentOverride *decimal.Decimal
	if err := tx.QueryRow(ctx, lockQuery, accountID).Scan(&currentOverride); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("school account " + accountID + " not found for reconciliation")
		}
		return apperrors.NewAppError(500, "failed to lock school account "+accountID, err)
	}
	if !overridesEqual(currentOverride, observedOverride) {
		return fmt.Errorf("%w: school account %s was reconciled concurrently", apperrors.ErrConflict, accountID)
	}

	updateQuery := `
		UPDATE school_accounts
		SET paid_override = $2,
		    expected_amount = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE account_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, accountID, paidOverride, expectedAmount, updatedAt, updatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to update reconciled amounts for account "+accountID, err)
	}

	if compensating != nil {
		m := mapping.ToModelTransaction(*compensating)

		var linkedAccountID sql.NullString
		if m.AccountID != "" {
			linkedAccountID = sql.NullString{String: m.AccountID, Valid: true}
		}

		insertQuery := `
			INSERT INTO transactions (` + transactionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
		`
		_, err := tx.Exec(ctx, insertQuery,
			m.TransactionID,
			m.Direction,
			m.Amount,
			m.Description,
			m.Category,
			m.PaymentMethod,
			m.Reference,
			linkedAccountID,
			m.OccurredAt,
			m.RecordedBy,
			m.Status,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: compensating transaction %s already exists", apperrors.ErrDuplicate, m.TransactionID)
			}
			return apperrors.NewAppError(500, "failed to insert compensating transaction for account "+accountID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// overridesEqual compares two nullable override values by amount.
func overridesEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// ClearPaidOverride returns the account to the computed paid figure.
func (r *PgxSchoolAccountRepository) ClearPaidOverride(ctx context.Context, accountID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE school_accounts
		SET paid_override = NULL, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to clear paid override for account "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("school account " + accountID + " not found")
	}
	return nil
}
