package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Nzyazin/payouts/internal/core/logger"
	"github.com/Nzyazin/payouts/internal/core/models"
	"github.com/Nzyazin/payouts/internal/core/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type postgresPayoutRepo struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewPostgresPayoutRepo(db *sqlx.DB, log logger.Logger) repository.PayoutRepository {
	return &postgresPayoutRepo{
		db:  db,
		log: log,
	}
}

const payoutColumns = `payout_uid, method, amount, currency, status, bank_name, bank_bik,
		card_number, account_number, phone, description, created_at, updated_at`

func (r *postgresPayoutRepo) Create(ctx context.Context, payout *models.Payout) error {
	query := `INSERT INTO payouts (` + payoutColumns + `)
		VALUES (:payout_uid, :method, :amount, :currency, :status, :bank_name, :bank_bik,
			:card_number, :account_number, :phone, :description, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, payout); err != nil {
		return fmt.Errorf("create payout: %w", err)
	}

	return nil
}

func (r *postgresPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE payout_uid = $1`
	err := r.db.GetContext(ctx, &payout, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %s", repository.ErrPayoutNotFound, id)
		}
		return nil, fmt.Errorf("error getting payout: %w", err)
	}

	return &payout, nil
}

func (r *postgresPayoutRepo) List(ctx context.Context, limit, offset int) ([]models.Payout, error) {
	payouts := []models.Payout{}
	query := `SELECT ` + payoutColumns + ` FROM payouts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &payouts, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}

	return payouts, nil
}

func (r *postgresPayoutRepo) Update(ctx context.Context, payout *models.Payout) error {
	query := `UPDATE payouts
		SET method = :method,
			status = :status,
			bank_name = :bank_name,
			bank_bik = :bank_bik,
			card_number = :card_number,
			account_number = :account_number,
			phone = :phone,
			description = :description,
			updated_at = :updated_at
		WHERE payout_uid = :payout_uid`

	res, err := r.db.NamedExecContext(ctx, query, payout)
	if err != nil {
		return fmt.Errorf("update payout: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payout rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %s", repository.ErrPayoutNotFound, payout.ID)
	}

	return nil
}

// UpdateStatus переводит заявку в новый статус, не затирая ручную отмену:
// запись, уже переведённую в cancelled, конвейер не трогает.
func (r *postgresPayoutRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (bool, error) {
	query := `UPDATE payouts
		SET status = $1, updated_at = NOW()
		WHERE payout_uid = $2 AND status <> $3`

	res, err := r.db.ExecContext(ctx, query, status, id, models.StatusCancelled)
	if err != nil {
		return false, fmt.Errorf("update payout status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update payout status rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *postgresPayoutRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payouts WHERE payout_uid = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payout: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete payout rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %s", repository.ErrPayoutNotFound, id)
	}

	return nil
}
