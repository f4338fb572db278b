package services

import (
	"context"
	"log/slog"
	"time"

	"warikan/internal/cache"
	"warikan/internal/core"
)

// CachingAmounter memoizes card totals for months that have already
// ended. The running month is always fetched, and errors are never cached.
type CachingAmounter struct {
	next  MonthlyAmounter
	cache *cache.LRU[core.YearMonth, core.Money]
	now   func() time.Time
	loc   *time.Location
}

func NewCachingAmounter(next MonthlyAmounter, ttl time.Duration, loc *time.Location) *CachingAmounter {
	if loc == nil {
		loc = time.UTC
	}
	return &CachingAmounter{
		next:  next,
		cache: cache.New[core.YearMonth, core.Money](24, ttl),
		now:   time.Now,
		loc:   loc,
	}
}

func (c *CachingAmounter) MonthlyAmount(ctx context.Context, ym core.YearMonth) (core.Money, error) {
	if total, ok := c.cache.Get(ym); ok {
		slog.DebugContext(ctx, "Card total cache hit", "year", ym.Year, "month", ym.Month)
		return total, nil
	}

	total, err := c.next.MonthlyAmount(ctx, ym)
	if err != nil {
		return core.Money{}, err
	}
	if c.ended(ym) {
		c.cache.Set(ym, total)
	}
	return total, nil
}

func (c *CachingAmounter) ended(ym core.YearMonth) bool {
	cur := core.YearMonthOf(c.now().In(c.loc))
	return ym.Year < cur.Year || (ym.Year == cur.Year && ym.Month < cur.Month)
}
