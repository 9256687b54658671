// util/cache_service.go

package util

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dev-mohitbeniwal/mintgate/db"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetWhitelistStatus(ctx context.Context, authKey string) (*bool, error) {
	return db.GetCachedWhitelistStatus(ctx, authKey)
}

func (c *CacheService) SetWhitelistStatus(ctx context.Context, authKey string, allowed bool) error {
	return db.CacheWhitelistStatus(ctx, authKey, allowed)
}

func (c *CacheService) DeleteWhitelistStatus(ctx context.Context, authKey string) error {
	return db.DeleteCachedWhitelistStatus(ctx, authKey)
}

func (c *CacheService) GetPerUnitFee(ctx context.Context, templateID string, termsID uint64) (*decimal.Decimal, error) {
	return db.GetCachedPerUnitFee(ctx, templateID, termsID)
}

func (c *CacheService) SetPerUnitFee(ctx context.Context, templateID string, termsID uint64, fee decimal.Decimal) error {
	return db.CachePerUnitFee(ctx, templateID, termsID, fee)
}
