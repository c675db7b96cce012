package worker

import (
	"context"
	"errors"
	"time"

	"github.com/Nzyazin/payouts/internal/core/logger"
	"github.com/Nzyazin/payouts/internal/core/models"
	"github.com/Nzyazin/payouts/internal/core/queue"
	"github.com/Nzyazin/payouts/internal/core/repository"
	"github.com/Nzyazin/payouts/internal/core/validation"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var processedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payout_processed_total",
		Help: "Terminal payout transitions performed by the processing worker.",
	},
	[]string{"status"},
)

// PayoutWorker выполняет асинхронную обработку заявки: pending ->
// processing -> (после имитации обработки) completed либо rejected.
type PayoutWorker struct {
	repo   repository.PayoutRepository
	engine *validation.Engine
	delay  time.Duration
	log    logger.Logger
}

func NewPayoutWorker(repo repository.PayoutRepository, engine *validation.Engine, delay time.Duration, log logger.Logger) *PayoutWorker {
	return &PayoutWorker{repo: repo, engine: engine, delay: delay, log: log}
}

// Register вешает обработчик на mux asynq-сервера.
func (w *PayoutWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TaskProcessPayout, w.ProcessTask)
}

// ProcessTask обрабатывает одну задачу. Отсутствие заявки - не ошибка:
// задача логируется и отбрасывается, никто результата не ждёт.
func (w *PayoutWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	id, err := uuid.Parse(string(t.Payload()))
	if err != nil {
		w.log.Error("Malformed payout task payload, dropping",
			logger.StringField("payload", string(t.Payload())),
			logger.ErrorField("error", err),
		)
		return nil
	}

	payout, err := w.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPayoutNotFound) {
			w.log.Warn("Payout not found, dropping job",
				logger.StringField("payout_uid", id.String()),
			)
			return nil
		}
		return err
	}

	w.log.Info("Payout processing started",
		logger.StringField("payout_uid", id.String()),
		logger.StringField("amount", payout.Amount.String()),
		logger.StringField("currency", string(payout.Currency)),
	)

	ok, err := w.repo.UpdateStatus(ctx, id, models.StatusProcessing)
	if err != nil {
		return err
	}
	if !ok {
		w.log.Warn("Payout is cancelled or gone, skipping processing",
			logger.StringField("payout_uid", id.String()),
		)
		return nil
	}

	// Имитация обращения к платёжному рейлу. При остановке пула воркеров
	// ожидание прерывается и заявка остаётся в processing.
	if err := w.wait(ctx); err != nil {
		w.log.Warn("Payout processing interrupted by shutdown",
			logger.StringField("payout_uid", id.String()),
		)
		return err
	}

	// Перечитываем запись: за время ожидания её могли отредактировать
	// или удалить вручную.
	payout, err = w.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPayoutNotFound) {
			w.log.Warn("Payout deleted mid-flight, dropping job",
				logger.StringField("payout_uid", id.String()),
			)
			return nil
		}
		return err
	}

	if w.engine.AmountBelowFloor(payout.Amount) {
		w.log.Warn("Payout rejected: amount at or below minimum",
			logger.StringField("payout_uid", id.String()),
			logger.StringField("amount", payout.Amount.String()),
		)
		return w.finish(ctx, id, models.StatusRejected)
	}

	if err := w.engine.ValidateMethodFields(payout.Method, payout.CardNumber, payout.AccountNumber); err != nil {
		w.log.Warn("Payout rejected: method fields invalid",
			logger.StringField("payout_uid", id.String()),
			logger.StringField("method", string(payout.Method)),
			logger.ErrorField("error", err),
		)
		return w.finish(ctx, id, models.StatusRejected)
	}

	return w.finish(ctx, id, models.StatusCompleted)
}

func (w *PayoutWorker) wait(ctx context.Context) error {
	timer := time.NewTimer(w.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w *PayoutWorker) finish(ctx context.Context, id uuid.UUID, status models.Status) error {
	ok, err := w.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		w.log.Warn("Terminal transition skipped: payout cancelled or gone",
			logger.StringField("payout_uid", id.String()),
			logger.StringField("status", string(status)),
		)
		return nil
	}

	processedTotal.WithLabelValues(string(status)).Inc()

	if status == models.StatusCompleted {
		w.log.Info("Payout completed", logger.StringField("payout_uid", id.String()))
	} else {
		w.log.Info("Payout rejected", logger.StringField("payout_uid", id.String()))
	}
	return nil
}
