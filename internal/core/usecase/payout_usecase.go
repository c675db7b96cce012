package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nzyazin/payouts/internal/core/logger"
	"github.com/Nzyazin/payouts/internal/core/models"
	"github.com/Nzyazin/payouts/internal/core/queue"
	"github.com/Nzyazin/payouts/internal/core/repository"
	"github.com/Nzyazin/payouts/internal/core/validation"
	"github.com/google/uuid"
)

type PayoutUsecase interface {
	Create(ctx context.Context, in models.PayoutCreate) (*models.Payout, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	List(ctx context.Context, limit, offset int) ([]models.Payout, error)
	Update(ctx context.Context, id uuid.UUID, patch models.PayoutPatch) (*models.Payout, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const maxListLimit = 100

type payoutUsecase struct {
	repo   repository.PayoutRepository
	queue  queue.Queue
	engine *validation.Engine
	log    logger.Logger
}

func NewPayoutUsecase(repo repository.PayoutRepository, q queue.Queue, engine *validation.Engine, log logger.Logger) PayoutUsecase {
	return &payoutUsecase{repo: repo, queue: q, engine: engine, log: log}
}

// Create проверяет поля заявки, сохраняет её со статусом pending и ставит
// ровно одну задачу обработки. Невалидная заявка не сохраняется и задачу
// не порождает.
func (uc *payoutUsecase) Create(ctx context.Context, in models.PayoutCreate) (*models.Payout, error) {
	if err := uc.engine.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if err := uc.engine.ValidateMethodFields(in.Method, in.CardNumber, in.AccountNumber); err != nil {
		return nil, err
	}

	payout := models.NewPayout(in)
	if err := uc.repo.Create(ctx, payout); err != nil {
		uc.log.Error("Failed to persist payout",
			logger.StringField("payout_uid", payout.ID.String()),
			logger.ErrorField("error", err),
		)
		return nil, fmt.Errorf("create payout: %w", err)
	}

	uc.dispatch(ctx, payout)

	return payout, nil
}

// dispatch вызывается ровно один раз на успешно созданную заявку.
// Если брокер недоступен, заявка остаётся в pending - это штатная
// деградация, о которой сигнализируем логом, а не ошибкой клиенту.
func (uc *payoutUsecase) dispatch(ctx context.Context, payout *models.Payout) {
	if err := uc.queue.EnqueuePayout(ctx, payout.ID); err != nil {
		uc.log.Error("Failed to enqueue payout processing, record stays pending",
			logger.StringField("payout_uid", payout.ID.String()),
			logger.ErrorField("error", err),
		)
		return
	}

	uc.log.Info("Payout created",
		logger.StringField("payout_uid", payout.ID.String()),
		logger.StringField("method", string(payout.Method)),
		logger.StringField("amount", payout.Amount.String()),
		logger.StringField("currency", string(payout.Currency)),
	)
}

func (uc *payoutUsecase) Get(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	payout, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPayoutNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("get payout: %w", err)
	}
	return payout, nil
}

func (uc *payoutUsecase) List(ctx context.Context, limit, offset int) ([]models.Payout, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	payouts, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	return payouts, nil
}

// Update применяет частичное обновление. Отсутствующий в патче метод
// берётся из текущей записи; явно обнулённый номер карты или счёта -
// жёсткая ошибка, даже если раньше значение было заполнено.
func (uc *payoutUsecase) Update(ctx context.Context, id uuid.UUID, patch models.PayoutPatch) (*models.Payout, error) {
	payout, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPayoutNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("get payout for update: %w", err)
	}

	if err := applyPatch(payout, patch); err != nil {
		return nil, err
	}

	if err := uc.engine.ValidateMethodFields(payout.Method, payout.CardNumber, payout.AccountNumber); err != nil {
		return nil, err
	}

	payout.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, payout); err != nil {
		if errors.Is(err, repository.ErrPayoutNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("update payout: %w", err)
	}

	uc.log.Info("Payout updated",
		logger.StringField("payout_uid", payout.ID.String()),
		logger.StringField("status", string(payout.Status)),
	)

	return payout, nil
}

func applyPatch(payout *models.Payout, patch models.PayoutPatch) error {
	if patch.Method != nil {
		payout.Method = *patch.Method
	}
	if patch.Status != nil {
		// Ручное редактирование может выставить любой допустимый статус,
		// включая cancelled, минуя автоматический конвейер.
		if !patch.Status.Valid() {
			return &validation.FieldError{Field: "status", Err: validation.ErrInvalidStatus}
		}
		payout.Status = *patch.Status
	}
	if patch.BankName != nil {
		payout.BankName = *patch.BankName
	}
	if patch.BankBik != nil {
		payout.BankBik = *patch.BankBik
	}
	if patch.CardNumber != nil {
		payout.CardNumber = *patch.CardNumber
	}
	if patch.AccountNumber != nil {
		payout.AccountNumber = *patch.AccountNumber
	}
	if patch.Phone != nil {
		payout.Phone = *patch.Phone
	}
	if patch.Description != nil {
		payout.Description = *patch.Description
	}
	return nil
}

func (uc *payoutUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPayoutNotFound) {
			return ErrPayoutNotFound
		}
		return fmt.Errorf("delete payout: %w", err)
	}

	uc.log.Info("Payout deleted", logger.StringField("payout_uid", id.String()))
	return nil
}
