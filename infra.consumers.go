package main

import (
	"context"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

type journalConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	journal JournalStorage
}

func NewJournalConsumer(logger *zap.Logger, q Queuer, journal JournalStorage) Consumer {
	return &journalConsumer{logger, q, journal}
}

// Consume moves change events from the queues into the journal
// until the context is done.
func (jc *journalConsumer) Consume(ctx context.Context, qids ...string) error {
	var event ChangeEvent
	var err error
	var qid string
	for {
		qid, event, err = jc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			jc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			jc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		switch qid {
		case CreateQueue, UpdateQueue, DeleteQueue:
			if _, err = jc.journal.Append(ctx, event); err != nil {
				jc.logger.Error("consumer: failed to journal change",
					zap.String("qid", qid),
					zap.String("entity", event.Entity),
					zap.Int64("entity.id", event.EntityID),
					zap.Error(err),
				)
			}
		default:
			jc.logger.Warn("consumer: received event on unknow queue id", zap.String("qid", qid), zap.Any("event", event))
		}
	}
}
