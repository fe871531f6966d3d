package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type webhookClaimRecord struct {
	bun.BaseModel `bun:"table:easyship_webhook_claims,alias:ewc"`

	ID         string     `bun:"id,pk"`
	ClaimKey   string     `bun:"claim_key,notnull"`
	ClaimID    string     `bun:"claim_id,notnull"`
	Status     string     `bun:"status,notnull"`
	Attempts   int        `bun:"attempts,notnull"`
	TTLSeconds int64      `bun:"ttl_seconds,notnull"`
	LeaseUntil time.Time  `bun:"lease_until,notnull"`
	RetryAt    *time.Time `bun:"retry_at,nullzero"`
	LastError  string     `bun:"last_error"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
