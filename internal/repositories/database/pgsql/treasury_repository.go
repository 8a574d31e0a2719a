package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/autoecole-hub/console_backend/internal/apperrors"
	"github.com/autoecole-hub/console_backend/internal/core/domain"
	portsrepo "github.com/autoecole-hub/console_backend/internal/core/ports/repositories"
	"github.com/autoecole-hub/console_backend/internal/models"
	"github.com/autoecole-hub/console_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTreasuryRepository struct {
	BaseRepository
}

// newPgxTreasuryRepository creates a new repository for the treasury summary row.
func newPgxTreasuryRepository(pool *pgxpool.Pool) portsrepo.TreasuryRepositoryFacade {
	return &PgxTreasuryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxTreasuryRepository implements portsrepo.TreasuryRepositoryFacade
var _ portsrepo.TreasuryRepositoryFacade = (*PgxTreasuryRepository)(nil)

// GetSummary retrieves the singleton treasury summary row.
func (r *PgxTreasuryRepository) GetSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	query := `
		SELECT summary_id, total_inbound, total_outbound, balance, transaction_count, updated_at
		FROM treasury_summary
		WHERE summary_id = $1;
	`
	var m models.TreasurySummary
	err := r.Pool.QueryRow(ctx, query, models.TreasurySummaryID).Scan(
		&m.SummaryID,
		&m.TotalInbound,
		&m.TotalOutbound,
		&m.Balance,
		&m.TransactionCount,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to read treasury summary", err)
	}

	summary := mapping.ToDomainTreasurySummary(m)
	return &summary, nil
}

// ApplySummaryDelta folds a change into the summary row with a single atomic
// increment statement. The new totals are computed inside the database, never
// from a previously read value, so concurrent folds cannot overwrite each other.
func (r *PgxTreasuryRepository) ApplySummaryDelta(ctx context.Context, inboundDelta, outboundDelta decimal.Decimal, countDelta int64) (*domain.TreasurySummary, error) {
	query := `
		UPDATE treasury_summary
		SET total_inbound = total_inbound + $2,
		    total_outbound = total_outbound + $3,
		    balance = balance + ($2 - $3),
		    transaction_count = transaction_count + $4,
		    updated_at = $5
		WHERE summary_id = $1
		RETURNING summary_id, total_inbound, total_outbound, balance, transaction_count, updated_at;
	`
	var m models.TreasurySummary
	err := r.Pool.QueryRow(ctx, query,
		models.TreasurySummaryID,
		inboundDelta,
		outboundDelta,
		countDelta,
		time.Now().UTC(),
	).Scan(
		&m.SummaryID,
		&m.TotalInbound,
		&m.TotalOutbound,
		&m.Balance,
		&m.TransactionCount,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("treasury summary row missing")
		}
		return nil, apperrors.NewAppError(500, "failed to apply treasury summary delta", err)
	}

	summary := mapping.ToDomainTreasurySummary(m)
	return &summary, nil
}

// RebuildSummary recomputes the summary row from the transactions table in one
// statement. Totals sum VALIDATED entries by direction; the count includes
// entries of any status.
func (r *PgxTreasuryRepository) RebuildSummary(ctx context.Context) (*domain.TreasurySummary, error) {
	query := `
		UPDATE treasury_summary s
		SET total_inbound = agg.total_in,
		    total_outbound = agg.total_out,
		    balance = agg.total_in - agg.total_out,
		    transaction_count = agg.txn_count,
		    updated_at = $2
		FROM (
			SELECT
				COALESCE(SUM(CASE WHEN direction = 'INBOUND' AND status = 'VALIDATED' THEN amount ELSE 0 END), 0) AS total_in,
				COALESCE(SUM(CASE WHEN direction = 'OUTBOUND' AND status = 'VALIDATED' THEN amount ELSE 0 END), 0) AS total_out,
				COUNT(*) AS txn_count
			FROM transactions
		) agg
		WHERE s.summary_id = $1
		RETURNING s.summary_id, s.total_inbound, s.total_outbound, s.balance, s.transaction_count, s.updated_at;
	`
	var m models.TreasurySummary
	err := r.Pool.QueryRow(ctx, query, models.TreasurySummaryID, time.Now().UTC()).Scan(
		&m.SummaryID,
		&m.TotalInbound,
		&m.TotalOutbound,
		&m.Balance,
		&m.TransactionCount,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("treasury summary row missing")
		}
		return nil, apperrors.NewAppError(500, "failed to rebuild treasury summary", err)
	}

	summary := mapping.ToDomainTreasurySummary(m)
	return &summary, nil
}

// foldSummaryInTx applies the same atomic increment as ApplySummaryDelta but
// inside an existing database transaction, so ledger writes and their summary
// fold commit together.
func foldSummaryInTx(ctx context.Context, tx pgx.Tx, inboundDelta, outboundDelta decimal.Decimal, countDelta int64) error {
	query := `
		UPDATE treasury_summary
		SET total_inbound = total_inbound + $2,
		    total_outbound = total_outbound + $3,
		    balance = balance + ($2 - $3),
		    transaction_count = transaction_count + $4,
		    updated_at = $5
		WHERE summary_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		models.TreasurySummaryID,
		inboundDelta,
		outboundDelta,
		countDelta,
		time.Now().UTC(),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to fold treasury summary", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("treasury summary row missing")
	}
	return nil
}

// summaryDeltaFor returns the (inbound, outbound) contribution of a transaction
// toward the treasury totals. Entries that are not VALIDATED contribute zero.
func summaryDeltaFor(txn domain.Transaction) (decimal.Decimal, decimal.Decimal) {
	if !txn.CountsTowardTotals() {
		return decimal.Zero, decimal.Zero
	}
	if txn.Direction == domain.Outbound {
		return decimal.Zero, txn.Amount
	}
	return txn.Amount, decimal.Zero
}
