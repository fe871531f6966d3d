package query

import (
	gocmd "github.com/goliatone/go-command"
	sqlstore "github.com/goliatone/go-easyship/store/sql"
	"github.com/goliatone/go-easyship/webhooks"
)

var (
	_ gocmd.Querier[GetWebhookClaimMessage, sqlstore.Claim] = (*GetWebhookClaimQuery)(nil)
	_ gocmd.Querier[CountWebhookListenersMessage, int]      = (*CountWebhookListenersQuery)(nil)
	_ ClaimReader                                           = (*sqlstore.DeliveryClaimStore)(nil)
	_ ClaimReader                                           = (*sqlstore.CachedDeliveryLookup)(nil)
	_ ListenerSource                                        = (*webhooks.Registry)(nil)
)
