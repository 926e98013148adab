package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"stockpro/pkg/logger"
)

const defaultRateTTL = time.Hour

// CachedRate is one cached PTAX quotation.
type CachedRate struct {
	// Rate is the BRL price of one unit of the currency (PTAX sale).
	Rate decimal.Decimal `json:"rate"`

	// QuoteDate is the business date of the quotation.
	QuoteDate time.Time `json:"quoteDate"`

	CachedAt time.Time `json:"cachedAt"`
}

// RateCache keeps PTAX quotations in redis so document previews do not
// hit the rate source on every render. A cache miss returns (nil, nil).
type RateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRateCache connects to redis and verifies the connection.
func NewRateCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultRateTTL
	}
	return &RateCache{client: client, ttl: ttl}, nil
}

func rateKey(isoCode string) string {
	return "ptax:rate:" + isoCode
}

// Get returns the cached quotation for a currency, or nil on a miss.
func (c *RateCache) Get(ctx context.Context, isoCode string) (*CachedRate, error) {
	raw, err := c.client.Get(ctx, rateKey(isoCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached rate %s: %w", isoCode, err)
	}

	var rate CachedRate
	if err := json.Unmarshal(raw, &rate); err != nil {
		// A corrupt entry behaves like a miss and gets rewritten on
		// the next Set.
		logger.Warn(ctx, "dropping corrupt cached rate", "currency", isoCode)
		_ = c.client.Del(ctx, rateKey(isoCode)).Err()
		return nil, nil
	}
	return &rate, nil
}

// Set stores a quotation for a currency.
func (c *RateCache) Set(ctx context.Context, isoCode string, rate decimal.Decimal, quoteDate time.Time) error {
	entry := CachedRate{
		Rate:      rate,
		QuoteDate: quoteDate,
		CachedAt:  time.Now().UTC(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached rate: %w", err)
	}

	if err := c.client.Set(ctx, rateKey(isoCode), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached rate %s: %w", isoCode, err)
	}
	return nil
}

// Invalidate drops the cached quotation for a currency.
func (c *RateCache) Invalidate(ctx context.Context, isoCode string) error {
	if err := c.client.Del(ctx, rateKey(isoCode)).Err(); err != nil {
		return fmt.Errorf("invalidate cached rate %s: %w", isoCode, err)
	}
	return nil
}

// Close releases the redis connection.
func (c *RateCache) Close() error {
	return c.client.Close()
}
