package backend

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// PublishingStore decorates a Store with change-event publication.
// A publish failure never fails the originating write; subscribers in
// this process already got their snapshot from the inner store.
type PublishingStore struct {
	inner  store.Store
	client *events.Client
	logger *log.Logger
}

func NewPublishingStore(inner store.Store, client *events.Client, logger *log.Logger) *PublishingStore {
	return &PublishingStore{
		inner:  inner,
		client: client,
		logger: logger.WithComponent(log.ComponentEvents),
	}
}

func (p *PublishingStore) Create(ctx context.Context, user string, f core.Fields) (string, error) {
	id, err := p.inner.Create(ctx, user, f)
	if err != nil {
		return "", err
	}
	p.publish(ctx, user, events.OpCreate, id)
	return id, nil
}

func (p *PublishingStore) Update(ctx context.Context, user, id string, f core.Fields) error {
	if err := p.inner.Update(ctx, user, id, f); err != nil {
		return err
	}
	p.publish(ctx, user, events.OpUpdate, id)
	return nil
}

func (p *PublishingStore) Delete(ctx context.Context, user, id string) error {
	if err := p.inner.Delete(ctx, user, id); err != nil {
		return err
	}
	p.publish(ctx, user, events.OpDelete, id)
	return nil
}

func (p *PublishingStore) Subscribe(user string, onSnapshot func([]core.Transaction), onError func(error)) (*store.Subscription, error) {
	return p.inner.Subscribe(user, onSnapshot, onError)
}

func (p *PublishingStore) publish(ctx context.Context, user, op, id string) {
	if err := p.client.PublishChange(ctx, user, op, id); err != nil {
		p.logger.WarnContext(ctx, "Change event not published",
			log.FieldUser, user,
			log.FieldOperation, op,
			log.FieldTxID, id,
			log.FieldError, err.Error())
	}
}
