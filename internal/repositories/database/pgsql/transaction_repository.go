package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	"github.com/autoecole-hub/console_backend/internal/dto"
	"github.com/autoecole-hub/console_backend/internal/models"
	"github.com/autoecole-hub/console_backend/internal/utils/mapping"
	"github.com/autoecole-hub/console_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `transaction_id, direction, amount, description, category, payment_method, reference, account_id, occurred_at, recorded_by, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for ledger entries.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryWithTx {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryWithTx
var _ portsrepo.TransactionRepositoryWithTx = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	var accountID sql.NullString
	err := row.Scan(
		&m.TransactionID,
		&m.Direction,
		&m.Amount,
		&m.Description,
		&m.Category,
		&m.PaymentMethod,
		&m.Reference,
		&accountID,
		&m.OccurredAt,
		&m.RecordedBy,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	if accountID.Valid {
		m.AccountID = accountID.String
	}
	return m, nil
}

// SaveTransaction inserts a ledger entry and folds its validated amount into the
// treasury summary within one database transaction.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelTransaction(txn)

	var accountID sql.NullString
	if m.AccountID != "" {
		accountID = sql.NullString{String: m.AccountID, Valid: true}
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, query,
		m.TransactionID,
		m.Direction,
		m.Amount,
		m.Description,
		m.Category,
		m.PaymentMethod,
		m.Reference,
		accountID,
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
			return fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}

	inDelta, outDelta := summaryDeltaFor(txn)
	if err := foldSummaryInTx(ctx, tx, inDelta, outDelta, 1); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateTransaction persists edits to a ledger entry and folds the aggregate
// delta against the previously persisted state into the treasury summary.
// The existing row is locked so concurrent edits of the same entry serialize.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	oldModel, err := scanTransaction(tx.QueryRow(ctx, lockQuery, txn.TransactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("transaction " + txn.TransactionID + " not found for update")
		}
		return apperrors.NewAppError(500, "failed to lock transaction "+txn.TransactionID, err)
	}
	old := mapping.ToDomainTransaction(oldModel)

	m := mapping.ToModelTransaction(txn)
	updateQuery := `
		UPDATE transactions
		SET amount = $2,
		    description = $3,
		    category = $4,
		    payment_method = $5,
		    status = $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE transaction_id = $1;
	`
	_, err = tx.Exec(ctx, updateQuery,
		m.TransactionID,
		m.Amount,
		m.Description,
		m.Category,
		m.PaymentMethod,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+m.TransactionID, err)
	}

	oldIn, oldOut := summaryDeltaFor(old)
	newIn, newOut := summaryDeltaFor(txn)
	inDelta := newIn.Sub(oldIn)
	outDelta := newOut.Sub(oldOut)
	if !inDelta.IsZero() || !outDelta.IsZero() {
		if err := foldSummaryInTx(ctx, tx, inDelta, outDelta, 0); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteTransaction removes a ledger entry and folds its validated amount out of
// the treasury summary within one database transaction.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	m, err := scanTransaction(tx.QueryRow(ctx, lockQuery, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transaction " + transactionID + " not found for delete")
		}
		return nil, apperrors.NewAppError(500, "failed to lock transaction "+transactionID, err)
	}
	deleted := mapping.ToDomainTransaction(m)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}

	inDelta, outDelta := summaryDeltaFor(deleted)
	if err := foldSummaryInTx(ctx, tx, inDelta.Neg(), outDelta.Neg(), -1); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// FindTransactionByID retrieves a ledger entry by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// ListTransactions retrieves a filtered, paginated list of ledger entries using
// token-based pagination, ordered by occurred_at descending.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filters dto.ListTransactionsFilters, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions`

	whereClauses := []string{}
	args := []interface{}{}
	addArg := func(clauseFmt string, value interface{}) {
		args = append(args, value)
		whereClauses = append(whereClauses, fmt.Sprintf(clauseFmt, len(args)))
	}

	if filters.Direction != nil {
		addArg("direction = $%d", string(*filters.Direction))
	}
	if filters.Status != nil {
		addArg("status = $%d", string(*filters.Status))
	}
	if filters.From != nil {
		addArg("occurred_at >= $%d", *filters.From)
	}
	if filters.To != nil {
		addArg("occurred_at <= $%d", *filters.To)
	}
	if filters.SearchText != "" {
		args = append(args, "%"+filters.SearchText+"%")
		n := len(args)
		whereClauses = append(whereClauses, fmt.Sprintf("(description ILIKE $%d OR reference ILIKE $%d OR category ILIKE $%d)", n, n, n))
	}

	// Ordering must be stable: occurred_at DESC with created_at DESC as tie-breaker.
	if nextToken != nil && *nextToken != "" {
		lastOccurredAt, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastOccurredAt, lastCreatedAt)
		whereClauses = append(whereClauses, fmt.Sprintf("(occurred_at, created_at) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := baseQuery
	for i, clause := range whereClauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY occurred_at DESC, created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	results := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", scanErr)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var nextTokenVal *string
	if len(results) > limit {
		lastTxn := results[limit-1] // The actual last item of the current page
		token := pagination.EncodeToken(lastTxn.OccurredAt, lastTxn.CreatedAt)
		nextTokenVal = &token
		results = results[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// FindTransactionsForAccount retrieves every entry attributable to the account.
// Entries with an explicit account link match on the link alone; legacy entries
// without a link fall back to the description/reference heuristic.
func (r *PgxTransactionRepository) FindTransactionsForAccount(ctx context.Context, account domain.SchoolAccount) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		   OR (account_id IS NULL AND (description ILIKE '%' || $2 || '%' OR reference LIKE '%' || $1 || '%'))
		ORDER BY occurred_at DESC, created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, account.AccountID, account.Name)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for account "+account.AccountID, err)
	}
	defer rows.Close()

	var results []models.Transaction
	for rows.Next() {
		m, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row for account "+account.AccountID, scanErr)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows for account "+account.AccountID, err)
	}

	return mapping.ToDomainTransactionSlice(results), nil
}

// ListUnlinkedTransactions retrieves entries without an account link, oldest first,
// for the legacy backfill.
func (r *PgxTransactionRepository) ListUnlinkedTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id IS NULL
		ORDER BY occurred_at ASC, created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unlinked transactions", err)
	}
	defer rows.Close()

	var results []models.Transaction
	for rows.Next() {
		m, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan unlinked transaction row", scanErr)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating unlinked transaction rows", err)
	}

	return mapping.ToDomainTransactionSlice(results), nil
}

// LinkTransactionToAccount sets the explicit account link on a legacy entry.
func (r *PgxTransactionRepository) LinkTransactionToAccount(ctx context.Context, transactionID, accountID, updatedBy string) error {
	query := `
		UPDATE transactions
		SET account_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1 AND account_id IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, transactionID, accountID, time.Now().UTC(), updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to link transaction "+transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + transactionID + " not found or already linked")
	}
	return nil
}
