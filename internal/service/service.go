// Package service holds the multi-step operations of the diet workflow:
// the food intake ledger, approvals and kitchen status changes. Each write
// path runs in a single transaction.
package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ward-diet/api/internal/database"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is a pool: it runs queries directly and starts transactions.
// *pgxpool.Pool satisfies it.
type DB interface {
	database.DBTX
	TxBeginner
}

// Publisher pushes realtime events to connected screens. *ws.Hub satisfies it.
type Publisher interface {
	Publish(room, eventType string, payload interface{}) error
}

// Clock returns the current local time used for createdAt stamps and the
// default repeat date.
type Clock func() time.Time

// LocalClock reads the wall clock in loc.
func LocalClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, interface{}) error { return nil }
