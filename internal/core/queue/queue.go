package queue

import (
	"context"
	"fmt"

	"github.com/Nzyazin/payouts/internal/core/logger"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskProcessPayout - тип задачи обработки заявки. Payload задачи -
// только id заявки, актуальное состояние воркер читает из хранилища.
const TaskProcessPayout = "payout:process"

type Queue interface {
	EnqueuePayout(ctx context.Context, id uuid.UUID) error
}

type AsynqQueue struct {
	client *asynq.Client
	log    logger.Logger
}

func NewAsynqQueue(redisAddr string, log logger.Logger) *AsynqQueue {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	return &AsynqQueue{client: client, log: log}
}

// EnqueuePayout ставит в очередь ровно одну задачу на заявку:
// TaskID равен id заявки, поэтому повторная постановка того же id
// отбрасывается брокером.
func (q *AsynqQueue) EnqueuePayout(ctx context.Context, id uuid.UUID) error {
	task := asynq.NewTask(TaskProcessPayout, []byte(id.String()), asynq.TaskID(id.String()))

	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue payout %s: %w", id, err)
	}

	q.log.Info("payout job enqueued",
		logger.StringField("payout_uid", id.String()),
		logger.StringField("queue", info.Queue),
	)
	return nil
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}
