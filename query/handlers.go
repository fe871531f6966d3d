package query

import (
	"context"

	sqlstore "github.com/goliatone/go-easyship/store/sql"
	"github.com/goliatone/go-easyship/webhooks"
)

// ClaimReader is satisfied by *sqlstore.DeliveryClaimStore and
// *sqlstore.CachedDeliveryLookup.
type ClaimReader interface {
	Get(ctx context.Context, key string) (sqlstore.Claim, error)
}

// ListenerSource is satisfied by *webhooks.Registry.
type ListenerSource interface {
	ListenersFor(eventType webhooks.EventType) []webhooks.Listener
}

type GetWebhookClaimQuery struct {
	reader ClaimReader
}

func NewGetWebhookClaimQuery(reader ClaimReader) *GetWebhookClaimQuery {
	return &GetWebhookClaimQuery{reader: reader}
}

func (q *GetWebhookClaimQuery) Query(ctx context.Context, msg GetWebhookClaimMessage) (sqlstore.Claim, error) {
	if q == nil || q.reader == nil {
		return sqlstore.Claim{}, queryDependencyError("query: webhook claim reader is required")
	}
	if err := msg.Validate(); err != nil {
		return sqlstore.Claim{}, err
	}
	claim, err := q.reader.Get(ctx, msg.ReplayKey())
	if err != nil {
		return sqlstore.Claim{}, queryWrapLookup(err, "query: load webhook claim")
	}
	return claim, nil
}

type CountWebhookListenersQuery struct {
	source ListenerSource
}

func NewCountWebhookListenersQuery(source ListenerSource) *CountWebhookListenersQuery {
	return &CountWebhookListenersQuery{source: source}
}

func (q *CountWebhookListenersQuery) Query(_ context.Context, msg CountWebhookListenersMessage) (int, error) {
	if q == nil || q.source == nil {
		return 0, queryDependencyError("query: listener source is required")
	}
	if err := msg.Validate(); err != nil {
		return 0, err
	}
	return len(q.source.ListenersFor(msg.EventType)), nil
}
