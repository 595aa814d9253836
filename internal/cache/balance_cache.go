package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const balanceTTL = 10 * time.Minute

// BalanceCache is a read-side accelerator for account balances. The ledger
// is always ground truth: every write path refreshes or drops the cached
// value, and the consistency sweep recomputes it from the ledger.
type BalanceCache struct {
	rdb *redis.Client
}

// New returns a cache backed by rdb. A nil client yields a no-op cache so
// the flows and tests never have to care whether redis is deployed.
func New(rdb *redis.Client) *BalanceCache {
	return &BalanceCache{rdb: rdb}
}

func key(accountID uint) string {
	return fmt.Sprintf("balance:%d", accountID)
}

// Get returns the cached balance and whether it was present.
func (c *BalanceCache) Get(ctx context.Context, accountID uint) (float64, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, key(accountID)).Result()
	if err != nil {
		return 0, false
	}
	bal, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return bal, true
}

// Set stores a freshly derived balance.
func (c *BalanceCache) Set(ctx context.Context, accountID uint, balance float64) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Set(ctx, key(accountID), strconv.FormatFloat(balance, 'f', 2, 64), balanceTTL)
}

// Invalidate drops the cached balance after a write the caller could not
// price exactly.
func (c *BalanceCache) Invalidate(ctx context.Context, accountID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, key(accountID))
}
