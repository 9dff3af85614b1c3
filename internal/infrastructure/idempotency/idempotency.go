// Package idempotency remembers which request keys were already served so a
// retried create returns the original result instead of a duplicate.
package idempotency

import (
	"context"
	"fmt"
	"time"
)

// Pending marks a key whose first request is still running.
const Pending = "pending"

const keyOrderCreate = "idem:order:create:%d:%s"

// OrderCreateKey scopes a client key to the user that sent it.
func OrderCreateKey(userID int64, clientKey string) string {
	return fmt.Sprintf(keyOrderCreate, userID, clientKey)
}

type Store interface {
	// Claim stores Pending under key if it is free. When the key is taken it
	// returns false together with the stored value.
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed bool, value string, err error)
	// Complete replaces the claim with the final value.
	Complete(ctx context.Context, key, value string, ttl time.Duration) error
	// Release drops a claim so the request can be retried.
	Release(ctx context.Context, key string) error
}
