package operator

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/operator/actions"
)

// Operator is the worker that processes items from the queue. Each item runs
// in its own write session which is saved only when the action succeeds.
type Operator struct {
	gateway book.Gateway
	queue   chan ActionItem
	logger  *logrus.Logger
}

func NewOperator(gateway book.Gateway, queue chan ActionItem, logger *logrus.Logger) *Operator {
	return &Operator{
		gateway: gateway,
		queue:   queue,
		logger:  logger,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

func (o *Operator) processItem(item ActionItem) {
	item.response <- ActionItemResponse{err: o.perform(item)}
}

func (o *Operator) perform(item ActionItem) (err error) {
	if err := item.ctx.Err(); err != nil {
		return err
	}

	target := item.target
	target.ReadOnly = false
	session, err := o.gateway.Open(item.ctx, target)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			o.logger.WithError(closeErr).Warn("Operator.processItem.close")
		}
	}()

	if err = item.action.Perform(item.ctx, session); err != nil {
		return err
	}

	return session.Save(item.ctx)
}

type ActionItem struct {
	ctx      context.Context
	target   book.OpenOptions
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
