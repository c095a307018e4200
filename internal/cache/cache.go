package cache

import (
	"context"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Locker hands out short-lived exclusive leases.
type Locker interface {
	// TryLock returns ok=false when another holder owns key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

const (
	KeyHomeStats      = "jobportal:home:stats"
	KeyHomeCategories = "jobportal:home:categories"

	// suffixed with the requested limit
	KeyHomeFeatured     = "jobportal:home:featured"
	KeyHomeTopCompanies = "jobportal:home:top-companies"

	KeySweepLock = "jobportal:sweep:lock"

	PublicTTL = 5 * time.Minute
)
